package res

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestParseDataURL(t *testing.T) {
	r, err := NewLoader("").Load("data:text/css,td%20%7B%20color%3A%20red%20%7D")
	require.NoError(t, err)
	assert.Equal(t, "text/css", r.MimeType)
	assert.Equal(t, ResourceTypeCSS, r.Type)
	assert.Equal(t, "td { color: red }", r.GetString())

	r, err = NewLoader("").Load("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, ResourceTypeImage, r.Type)
	assert.Equal(t, "hello", r.GetString())

	_, err = NewLoader("").Load("data:image/png;base64")
	assert.Error(t, err)
}

func TestLoadLocalRelativeToDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "invoice.css"), []byte("body{}"), 0o644))

	l := NewLoader(filepath.Join(dir, "invoice.html"))
	r, err := l.LoadCSS("css/invoice.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", r.GetString())

	_, err = l.LoadImage("css/invoice.css")
	assert.Error(t, err)
}

func TestLoadSearchPathsAndSniffing(t *testing.T) {
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "logo"), pngSignature, 0o644))

	l := NewLoader(filepath.Join(t.TempDir(), "invoice.html"))
	l.AddSearchPath(assets)
	r, err := l.LoadImage("img/logo")
	require.NoError(t, err)
	assert.Equal(t, "image/png", r.MimeType)

	_, err = l.Load("missing.png")
	assert.Error(t, err)
}

func TestLoadRemote(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		switch r.URL.Path {
		case "/invoices/style.css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
			_, _ = w.Write([]byte("td{}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/invoices/42.html")
	r, err := l.LoadCSS("style.css")
	require.NoError(t, err)
	assert.Equal(t, "text/css", r.MimeType)
	assert.Equal(t, srv.URL+"/invoices/style.css", r.URL)

	_, err = l.LoadCSS("style.css")
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second load is served from cache")

	_, err = l.LoadHTML(context.Background(), "nope.html")
	assert.Error(t, err)
}
