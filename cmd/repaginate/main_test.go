package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gompdf/repaginate/internal/state"
	"github.com/gompdf/repaginate/pkg/api"
)

const quietConfig = `version: 1
logging:
  console:
    level: none
`

const invoiceHTML = `<html><head><style>td { padding: 0; } table { border-spacing: 0; }</style></head><body>
<div class="header" style="height: 100px">Invoice</div>
<div class="body"><table class="splittable"><tbody>
<tr class="line-item" style="height: 300px"><td class="amount">1.50</td></tr>
<tr class="line-item" style="height: 300px"><td class="amount">2.50</td></tr>
<tr class="line-item" style="height: 300px"><td class="amount">3.00</td></tr>
</tbody><tfoot><tr style="height: 20px"><td class="running-total"></td></tr></tfoot></table></div>
</body></html>`

func TestDestinationName(t *testing.T) {
	tests := []struct {
		src, dst, ext, want string
	}{
		{"invoices/march.html", "", ".pdf", "march.pdf"},
		{"march", "", ".paginated.html", "march.paginated.html"},
		{"march.html", "out/x.pdf", ".pdf", "out/x.pdf"},
		{"https://example.com/billing/42.html?x=1", "", ".pdf", "42.pdf"},
		{"https://example.com/", "", ".pdf", "example.com.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, destinationName(tt.src, tt.dst, tt.ext))
		})
	}
}

func TestReportLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	res := &api.Result{
		PageCount: 2,
		Diagnostics: []api.Diagnostic{
			{Kind: api.DiagMeasurementGap, Message: "no header content for inner-pages"},
			{Kind: api.DiagAmountParse, Page: 1, Message: "amount counted as 0"},
			{Kind: api.DiagSkipped, Page: 1, Message: "table fragment does not fit"},
			{Kind: api.DiagUnplaced, Message: "1 block left"},
		},
	}
	report(zap.New(core), res)

	levels := map[string]zapcore.Level{}
	for _, e := range logs.FilterMessage("Diagnostic").All() {
		levels[e.ContextMap()["kind"].(string)] = e.Level
	}
	assert.Equal(t, map[string]zapcore.Level{
		"measurement-gap": zapcore.DebugLevel,
		"amount-parse":    zapcore.DebugLevel,
		"skipped":         zapcore.WarnLevel,
		"unplaced":        zapcore.WarnLevel,
	}, levels)
	assert.Equal(t, 1, logs.FilterMessage("Done").Len())
}

func setup(t *testing.T) (dir, cfg, in string) {
	t.Helper()
	dir = t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(quietConfig), 0o644))
	in = filepath.Join(dir, "invoice.html")
	require.NoError(t, os.WriteFile(in, []byte(invoiceHTML), 0o644))
	return dir, cfg, in
}

func runApp(args ...string) error {
	ctx := state.ContextWithEnv(context.Background())
	return newApp().Run(ctx, append([]string{appName}, args...))
}

func TestPaginateCommand(t *testing.T) {
	dir, cfg, in := setup(t)
	out := filepath.Join(dir, "paginated.html")

	require.NoError(t, runApp("-c", cfg, "paginate", "--capacity", "800", in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `data-page-number="2"`)
	assert.Contains(t, string(data), ">7.00<")

	assert.Error(t, runApp("-c", cfg, "paginate", in, out), "existing destination")
	assert.NoError(t, runApp("-c", cfg, "paginate", "--overwrite", in, out))
}

func TestPDFCommand(t *testing.T) {
	dir, cfg, in := setup(t)
	out := filepath.Join(dir, "invoice.pdf")

	require.NoError(t, runApp("-c", cfg, "pdf", "--capacity", "800", in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPaginateCommandErrors(t *testing.T) {
	dir, cfg, _ := setup(t)

	assert.Error(t, runApp("-c", cfg, "paginate"))
	assert.Error(t, runApp("-c", cfg, "paginate", filepath.Join(dir, "missing.html"), filepath.Join(dir, "x.html")))
	assert.Error(t, runApp("-c", filepath.Join(dir, "missing.yaml"), "paginate", "x.html"))
}

func TestDumpConfig(t *testing.T) {
	dir, cfg, _ := setup(t)

	out := filepath.Join(dir, "actual.yaml")
	require.NoError(t, runApp("-c", cfg, "dumpconfig", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: none")

	out = filepath.Join(dir, "default.yaml")
	require.NoError(t, runApp("-c", cfg, "dumpconfig", "--default", out))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: normal")
}
