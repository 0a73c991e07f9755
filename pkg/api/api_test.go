package api

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/repaginate/internal/pagination"
)

const invoiceCSS = `
table { border-spacing: 0; }
td, th { padding: 0; }
.header { height: 100px; }
`

// invoice builds a document whose heights are fixed by CSS: a 100px header on
// the first page, a 50px footer on the first page and a 100px footer on the
// others, and rows of rowHeight px.
func invoice(head string, rows int, rowHeight float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html><html><head><title>Invoice 42</title>%s</head><body>`, head)
	b.WriteString(`<div class="header first-page single-page">ACME Ltd.</div>`)
	b.WriteString(`<div class="body"><table class="splittable"><thead>`)
	b.WriteString(`<tr class="cols" style="height: 40px"><th>Item</th><th>Amount</th></tr>`)
	b.WriteString(`<tr class="carry-over inner-pages last-page" style="height: 20px"><td>Carried over</td><td class="carry-over"></td></tr>`)
	b.WriteString(`</thead><tbody>`)
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, `<tr class="line-item" id="item-%d" style="height: %gpx"><td>Widget %d</td><td class="amount">10</td></tr>`, i, rowHeight, i)
	}
	b.WriteString(`</tbody><tfoot><tr class="running-total" style="height: 30px"><td>Total</td><td class="running-total"></td></tr></tfoot></table></div>`)
	b.WriteString(`<div class="footer first-page single-page" style="height: 50px">Page <span class="page-number"></span> of <span class="page-count"></span></div>`)
	b.WriteString(`<div class="footer inner-pages last-page" style="height: 100px">Page <span class="page-number"></span></div>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func inlineInvoice(rows int, rowHeight float64) string {
	return invoice("<style>"+invoiceCSS+"</style>", rows, rowHeight)
}

func TestPaginate(t *testing.T) {
	out, res, err := New(WithPageCapacity(1000)).Paginate(inlineInvoice(10, 80))
	require.NoError(t, err)

	assert.Equal(t, [4]float64{850, 850, 900, 900}, res.Profile.BodyAvailable)
	assert.Equal(t, 2, res.PageCount)
	require.Len(t, res.Pages, 2)
	assert.Empty(t, res.Unplaced)
	assert.Equal(t, []pagination.TableTotal{
		{Page: 1, CarryOver: 0, Sum: 90, Total: 90},
		{Page: 2, CarryOver: 90, Sum: 10, Total: 100},
	}, res.Totals)

	assert.Equal(t, 1, strings.Count(out, `class="pages"`))
	assert.Contains(t, out, `data-page-number="2"`)
	assert.Contains(t, out, `data-table-state="last-page"`)
	for i := 1; i <= 10; i++ {
		assert.Equal(t, 1, strings.Count(out, fmt.Sprintf(`id="item-%d"`, i)))
	}
	assert.Less(t, strings.Index(out, `id="item-9"`), strings.Index(out, `id="item-10"`))
	assert.Contains(t, out, ">100.00<")
}

func TestPaginateStrict(t *testing.T) {
	doc := `<html><body><div class="body"><div style="height: 2000px">huge</div></div></body></html>`

	_, res, err := New(WithPageCapacity(1000), WithProgress(ProgressSkip), WithStrict(true)).Paginate(doc)
	assert.ErrorIs(t, err, ErrUnplacedContent)
	require.NotNil(t, res)
	assert.Len(t, res.Unplaced, 1)

	_, res, err = New(WithPageCapacity(1000)).Paginate(doc)
	require.NoError(t, err)
	assert.Len(t, res.DiagnosticsOf(pagination.DiagForced), 1)
}

func TestPaginateMeasuresPageContainer(t *testing.T) {
	doc := `<html><head><style>.page { height: 500px; }</style></head><body>
		<div class="body"><div style="height: 300px">a</div><div style="height: 300px">b</div></div>
	</body></html>`

	_, res, err := New().Paginate(doc)
	require.NoError(t, err)
	assert.InDelta(t, 500, res.Profile.PageAvailable, 1e-9)
	assert.Equal(t, 2, res.PageCount)
	assert.Empty(t, res.DiagnosticsOf(pagination.DiagCapacity))
}

func TestPaginateFallsBackToPageSize(t *testing.T) {
	doc := `<html><body><div class="body"><p>one line</p></div></body></html>`

	_, res, err := New(WithPageSizeLetter()).Paginate(doc)
	require.NoError(t, err)
	assert.InDelta(t, PageSizeLetter.Height, res.Profile.PageAvailable, 1e-9)
	assert.Len(t, res.DiagnosticsOf(pagination.DiagCapacity), 1)
	assert.Equal(t, 1, res.PageCount)
}

func TestPaginateBadLocale(t *testing.T) {
	_, res, err := New(WithLocale("not a locale!")).Paginate(inlineInvoice(1, 20))
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestPaginateToPDF(t *testing.T) {
	var buf bytes.Buffer
	res, err := New(WithPageCapacity(1000), WithAuthor("Accounts")).PaginateToPDF(inlineInvoice(10, 80), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
}

func writeInvoice(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice.css"), []byte(invoiceCSS), 0o644))
	in := filepath.Join(dir, "invoice.html")
	require.NoError(t, os.WriteFile(in, []byte(invoice(`<link rel="stylesheet" href="invoice.css">`, 10, 80)), 0o644))
	return in
}

func TestPaginateFile(t *testing.T) {
	in := writeInvoice(t)
	out := filepath.Join(t.TempDir(), "out", "invoice.html")

	res, err := New(WithPageCapacity(1000)).PaginateFile(context.Background(), in, out)
	require.NoError(t, err)
	// the header height comes from the linked stylesheet
	assert.Equal(t, [4]float64{850, 850, 900, 900}, res.Profile.BodyAvailable)
	assert.Equal(t, 2, res.PageCount)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `data-page-number="2"`)
}

func TestPaginateFileToPDF(t *testing.T) {
	in := writeInvoice(t)
	out := filepath.Join(t.TempDir(), "invoice.pdf")

	res, err := New(WithPageCapacity(1000)).PaginateFileToPDF(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = New().PaginateFile(context.Background(), filepath.Join(t.TempDir(), "missing.html"), out)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	o := New(WithPageSizeLetter(), WithPageOrientation(PageOrientationLandscape)).Options()
	size := o.pageSize()
	assert.Equal(t, PageSizeLetter.Height, size.Width)
	assert.Equal(t, PageSizeLetter.Width, size.Height)

	o = New(WithPageSize(1000, 500)).Options()
	size = o.pageSize()
	assert.Equal(t, 500.0, size.Width)
	assert.Equal(t, 1000.0, size.Height)

	o = DefaultOptions()
	assert.Equal(t, "en", o.Locale)
	assert.Equal(t, ProgressForce, o.Progress)
	assert.Equal(t, "splittable", o.Vocabulary.Splittable)
}
