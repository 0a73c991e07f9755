package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// fakeBackend reports data-height for nodes that have it and the sum of the
// element children otherwise. Page containers measure as page when set.
type fakeBackend struct {
	page  float64
	calls int
}

func (f *fakeBackend) OuterHeight(n *html.Node) float64 {
	f.calls++
	if f.page > 0 && n.HasClass("page") {
		return f.page
	}
	if v, ok := n.GetAttr("data-height"); ok {
		h, _ := strconv.ParseFloat(v, 64)
		return h
	}
	h := 0.0
	for _, c := range n.ElementChildren() {
		h += f.OuterHeight(c)
	}
	return h
}

func parseBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.NewParser().ParseString("<html><body>" + markup + "</body></html>")
	require.NoError(t, err)
	body := doc.Body()
	require.NotNil(t, body)
	return body
}

func newTestEngine(capacity float64, mutate ...func(*Options)) *Engine {
	opts := DefaultOptions()
	opts.PageCapacity = capacity
	for _, m := range mutate {
		m(&opts)
	}
	return NewEngine(&fakeBackend{}, opts)
}

// tableMarkup writes a splittable table with a head row, a carry-over row for
// continuation pages, one line item per height and a running-total foot row.
func tableMarkup(id string, heights []float64, amounts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table class="splittable" id="%s"><thead>`, id)
	b.WriteString(`<tr class="cols" data-height="40"><th>Item</th><th>Amount</th></tr>`)
	b.WriteString(`<tr class="carry-over inner-pages last-page" data-height="20"><td>Carried over</td><td class="carry-over"></td></tr>`)
	b.WriteString(`</thead><tbody>`)
	for i, h := range heights {
		a := "10"
		if i < len(amounts) {
			a = amounts[i]
		}
		fmt.Fprintf(&b, `<tr class="line-item" id="%s-%d" data-height="%g"><td>Item %d</td><td class="amount">%s</td></tr>`, id, i+1, h, i+1, a)
	}
	b.WriteString(`</tbody><tfoot>`)
	b.WriteString(`<tr class="running-total" data-height="30"><td>Total</td><td class="running-total"></td></tr>`)
	b.WriteString(`</tfoot></table>`)
	return b.String()
}

func repeat(h float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = h
	}
	return out
}

func lineItemIDs(n *html.Node) []string {
	var ids []string
	for _, tr := range n.ByClass("line-item") {
		id, _ := tr.GetAttr("id")
		ids = append(ids, id)
	}
	return ids
}

func textOf(t *testing.T, n *html.Node, class string) []string {
	t.Helper()
	var out []string
	for _, c := range n.ByClass(class) {
		if c.IsElement("tr") {
			continue
		}
		out = append(out, strings.TrimSpace(c.TextContent()))
	}
	return out
}

func tableStates(pages []*Page) []string {
	var out []string
	for _, p := range pages {
		for _, t := range p.Node.ByTag("table") {
			s, _ := t.GetAttr("data-table-state")
			out = append(out, s)
		}
	}
	return out
}
