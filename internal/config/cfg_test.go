package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/pagination"
	"github.com/gompdf/repaginate/pkg/api"
)

func TestLoadConfigurationNoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "A4", cfg.Document.PageSize)
	assert.Equal(t, "force", cfg.Document.Progress)
	assert.Equal(t, pagination.DefaultVocabulary(), cfg.Document.Vocabulary)
	assert.Contains(t, []time.Duration{30 * time.Second, 60 * time.Second}, cfg.Document.Timeout)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
}

func TestLoadConfigurationWithFile(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "extra.css")
	require.NoError(t, os.WriteFile(css, []byte(".page { height: 1000px; }"), 0o644))

	path := filepath.Join(dir, "config.yaml")
	content := `version: 1
document:
  page_size: Letter
  orientation: landscape
  locale: de
  progress: skip
  strict: true
  user_stylesheet: ` + css + `
  timeout: 5s
  vocabulary:
    amount: betrag
  defaults:
    header: first-page inner-pages
logging:
  console:
    level: none
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "Letter", cfg.Document.PageSize)
	assert.Equal(t, "betrag", cfg.Document.Vocabulary.Amount)
	assert.Equal(t, "header", cfg.Document.Vocabulary.Header, "unset fields keep template values")
	assert.Equal(t, 5*time.Second, cfg.Document.Timeout)

	o, err := cfg.Document.PaginatorOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, pagination.PageSizeLetter, o.PageSize)
	assert.Equal(t, api.PageOrientationLandscape, o.PageOrientation)
	assert.Equal(t, pagination.ProgressSkip, o.Progress)
	assert.True(t, o.Strict)
	assert.Equal(t, "de", o.Locale)
	assert.Equal(t, ".page { height: 1000px; }", o.UserStylesheet)
	assert.Equal(t, pagination.NewVariantSet(pagination.FirstPage, pagination.InnerPages), o.Defaults[pagination.RoleHeader])
	assert.Equal(t, pagination.NewVariantSet(pagination.FirstPage, pagination.InnerPages, pagination.LastPage), o.Defaults[pagination.RoleFooter])
	assert.NotNil(t, o.Logger)
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"version", "version: 2\n"},
		{"unknown field", "version: 1\ndocument:\n  margins: 10\n"},
		{"progress", "version: 1\ndocument:\n  progress: sometimes\n"},
		{"page size", "version: 1\ndocument:\n  page_size: B5\n"},
		{"empty class", "version: 1\ndocument:\n  vocabulary:\n    amount: \"\"\n"},
		{"line item class", "version: 1\ndocument:\n  vocabulary:\n    line_item: position\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadConfiguration(path)
			assert.Error(t, err)
		})
	}
}

func TestVariantDefaults(t *testing.T) {
	d := DocumentConfig{Defaults: map[string]string{"footer": "last-page"}}
	defs, err := d.VariantDefaults()
	require.NoError(t, err)
	assert.Equal(t, pagination.NewVariantSet(pagination.LastPage), defs[pagination.RoleFooter])
	assert.Equal(t, pagination.NewVariantSet(pagination.FirstPage), defs[pagination.RoleHeader])

	d.Defaults = map[string]string{"sidebar": "first-page"}
	_, err = d.VariantDefaults()
	assert.Error(t, err)

	d.Defaults = map[string]string{"header": "every-page"}
	_, err = d.VariantDefaults()
	assert.Error(t, err)
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	cfg, err := unmarshalConfig(data, &Config{}, true)
	require.NoError(t, err)

	out, err := Dump(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "splittable: splittable")
	assert.Contains(t, string(out), "page_size: A4")
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "run.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Debug("Hello", zap.String("what", "file"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello")

	conf.FileLogger.Destination = filepath.Join(t.TempDir(), "missing", "run.log")
	_, err = conf.Prepare()
	assert.Error(t, err)
}
