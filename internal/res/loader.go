package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is an image resource
	ResourceTypeImage
	// ResourceTypeCSS is a CSS resource
	ResourceTypeCSS
	// ResourceTypeHTML is an HTML document
	ResourceTypeHTML
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// DefaultTimeout bounds remote fetches.
const DefaultTimeout = 30 * time.Second

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader resolves and loads documents, stylesheets and images referenced by
// an invoice. Results are cached by reference.
type Loader struct {
	// BaseURL is the document location relative references resolve against,
	// either a file path or an http(s) URL.
	BaseURL string

	cache       map[string]*Resource
	cacheLock   sync.RWMutex
	searchPaths []string
	client      *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// SetTimeout changes the remote fetch timeout.
func (l *Loader) SetTimeout(d time.Duration) {
	l.client.Timeout = d
}

// Load loads a resource from a URL or file path
func (l *Loader) Load(ref string) (*Resource, error) {
	return l.LoadContext(context.Background(), ref)
}

// LoadContext is Load with a context bounding remote requests.
func (l *Loader) LoadContext(ctx context.Context, ref string) (*Resource, error) {
	l.cacheLock.RLock()
	if r, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return r, nil
	}
	l.cacheLock.RUnlock()

	var (
		r   *Resource
		err error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		r, err = parseDataURL(ref)
	default:
		var resolved string
		if resolved, err = l.resolveURL(ref); err != nil {
			break
		}
		if isRemote(resolved) {
			r, err = l.loadRemote(ctx, resolved)
		} else {
			r, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[ref] = r
	l.cacheLock.Unlock()
	return r, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource.
// Examples:
//
//	data:image/png;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URL")
	}

	mime := "text/plain"
	isBase64 := false
	for i, c := range strings.Split(meta, ";") {
		c = strings.TrimSpace(c)
		switch {
		case i == 0 && c != "":
			mime = c
		case strings.EqualFold(c, "base64"):
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{URL: u, Data: data, MimeType: mime, Type: determineResourceType(mime, "")}, nil
}

// resolveURL resolves a URL relative to the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" {
			return ref, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), filepath.FromSlash(ref)), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, u string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch %s: %s", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return newResource(u, data, strings.TrimSpace(mime)), nil
}

// loadLocal loads a resource from a local file, falling back to the search
// paths by base name.
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return newResource(path, data, ""), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, dir := range l.searchPaths {
		p := filepath.Join(dir, filepath.Base(path))
		if data, err := os.ReadFile(p); err == nil {
			return newResource(p, data, ""), nil
		}
	}
	return nil, fmt.Errorf("resource not found: %s", path)
}

// newResource fills in the MIME type, trusting the extension first and the
// content second.
func newResource(location string, data []byte, mime string) *Resource {
	if mime == "" || mime == "application/octet-stream" {
		mime = determineMimeType(location)
	}
	if mime == "application/octet-stream" {
		mime = mimetype.Detect(data).String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
	}
	return &Resource{URL: location, Data: data, MimeType: mime, Type: determineResourceType(mime, location)}
}

// determineMimeType determines the MIME type of a file from its extension
func determineMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// determineResourceType determines the type of a resource
func determineResourceType(mime, path string) ResourceType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return ResourceTypeImage
	case mime == "text/css":
		return ResourceTypeCSS
	case mime == "text/html" || mime == "application/xhtml+xml":
		return ResourceTypeHTML
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".tif", ".bmp":
		return ResourceTypeImage
	case ".css":
		return ResourceTypeCSS
	case ".html", ".htm":
		return ResourceTypeHTML
	}
	return ResourceTypeOther
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ref string) (*Resource, error) {
	return l.loadTyped(context.Background(), ref, ResourceTypeImage, "an image")
}

// LoadCSS loads a stylesheet
func (l *Loader) LoadCSS(ref string) (*Resource, error) {
	return l.loadTyped(context.Background(), ref, ResourceTypeCSS, "CSS")
}

// LoadHTML loads a document. Anything readable as text is accepted since
// invoices are often saved without an extension.
func (l *Loader) LoadHTML(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.LoadContext(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type == ResourceTypeImage || r.Type == ResourceTypeCSS {
		return nil, fmt.Errorf("resource is not HTML: %s", ref)
	}
	return r, nil
}

func (l *Loader) loadTyped(ctx context.Context, ref string, tp ResourceType, what string) (*Resource, error) {
	r, err := l.LoadContext(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type != tp {
		return nil, fmt.Errorf("resource is not %s: %s", what, ref)
	}
	return r, nil
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
