package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceOf(t *testing.T, markup string) *Source {
	t.Helper()
	root := parseBody(t, markup)
	m := NewHeightMeasurer(&fakeBackend{}, DefaultVocabulary(), StandardDefaults())
	src, _ := buildSource(root, m)
	return src
}

func onlyTable(t *testing.T, src *Source) *Table {
	t.Helper()
	tables := src.Tables()
	require.Len(t, tables, 1)
	return tables[0]
}

func TestNewTableMeasuresRows(t *testing.T) {
	src := sourceOf(t, `<div class="body">`+tableMarkup("t", []float64{80, 80, 80}, nil)+`</div>`)
	tbl := onlyTable(t, src)

	assert.Len(t, tbl.Head, 2)
	assert.Len(t, tbl.Rows, 3)
	assert.Len(t, tbl.Foot, 1)
	assert.Equal(t, 40.0+20+240+30, tbl.FullHeight)
	assert.Zero(t, tbl.Chrome)
	assert.Zero(t, tbl.Lead)

	assert.Equal(t, 40.0, tbl.HeadHeight(FirstPage))
	assert.Equal(t, 60.0, tbl.HeadHeight(InnerPages))
	assert.Equal(t, 60.0, tbl.HeadHeight(LastPage))
	assert.Equal(t, 30.0, tbl.FootHeight(SinglePage))
	assert.Equal(t, 60.0+30+240, tbl.RemainingHeight())
}

func TestDetermineState(t *testing.T) {
	src := sourceOf(t, `<div class="body">`+tableMarkup("t", repeat(100, 5), nil)+`</div>`)
	tbl := onlyTable(t, src)
	s := NewTableSplitter(nil)

	assert.Equal(t, StateFirst, s.DetermineState(tbl, 100))
	assert.Equal(t, StateFirst, tbl.State)

	tbl.State = StateInner
	assert.Equal(t, StateInner, s.DetermineState(tbl, 100))

	assert.Equal(t, StateLast, s.DetermineState(tbl, tbl.RemainingHeight()))
	assert.Equal(t, StateLast, tbl.State)
}

func TestSplitKeepsFinalRowForLastFragment(t *testing.T) {
	src := sourceOf(t, `<div class="body">`+tableMarkup("t", repeat(10, 3), nil)+`</div>`)
	tbl := onlyTable(t, src)
	s := NewTableSplitter(nil)

	// All three rows fit under the first-page head and foot, but not under
	// the last-page ones, so the third row is held back.
	frag := s.Split(tbl, 110, false)
	require.NotNil(t, frag)
	assert.Equal(t, StateFirst, frag.State)
	assert.Equal(t, 2, frag.Rows)
	assert.Equal(t, 90.0, frag.Height)
	assert.Equal(t, StateInner, tbl.State)
	assert.False(t, tbl.Finished())

	frag = s.Split(tbl, 110, false)
	require.NotNil(t, frag)
	assert.Equal(t, StateLast, frag.State)
	assert.Equal(t, 1, frag.Rows)
	assert.True(t, tbl.Finished())
	assert.Nil(t, s.Split(tbl, 1000, false))
}

func TestSplitWithoutRoom(t *testing.T) {
	src := sourceOf(t, `<div class="body">`+tableMarkup("t", repeat(100, 3), nil)+`</div>`)
	tbl := onlyTable(t, src)
	s := NewTableSplitter(nil)

	assert.Nil(t, s.Split(tbl, 50, false))
	assert.Len(t, tbl.Pending(), 3)
	assert.Equal(t, StateInner, tbl.State, "a skipped page still moves the table on")

	frag := s.Split(tbl, 50, true)
	require.NotNil(t, frag)
	assert.True(t, frag.Forced)
	assert.Equal(t, StateInner, frag.State)
	assert.Equal(t, 1, frag.Rows)
	assert.Equal(t, 190.0, frag.Height)
	assert.Len(t, tbl.Pending(), 2)
	assert.Equal(t, StateInner, tbl.State)
}

func TestSplitForcingFinalRowEndsTable(t *testing.T) {
	src := sourceOf(t, `<div class="body">`+tableMarkup("t", []float64{500}, nil)+`</div>`)
	tbl := onlyTable(t, src)
	s := NewTableSplitter(nil)

	frag := s.Split(tbl, 200, true)
	require.NotNil(t, frag)
	assert.True(t, frag.Forced)
	assert.Equal(t, StateLast, frag.State)
	assert.Equal(t, 1, frag.Rows)
	assert.True(t, tbl.Finished())
}

func TestFragmentStructure(t *testing.T) {
	markup := `<div class="body"><table class="splittable">
		<caption data-height="25">Items</caption>
		<colgroup><col><col></colgroup>
		<thead>
			<tr class="cols" data-height="40"><th>Item</th><th>Amount</th></tr>
			<tr class="carry-over inner-pages last-page" data-height="20"><td class="carry-over"></td></tr>
		</thead>
		<tbody>
			<tr class="line-item" id="a" data-height="100"><td>a</td></tr>
			<tr class="line-item" id="b" data-height="100"><td>b</td></tr>
			<tr class="line-item" id="c" data-height="100"><td>c</td></tr>
		</tbody>
	</table></div>`
	src := sourceOf(t, markup)
	tbl := onlyTable(t, src)
	assert.Equal(t, 25.0, tbl.Chrome)
	s := NewTableSplitter(nil)

	first := s.Split(tbl, 200, false)
	require.NotNil(t, first)
	second := s.Split(tbl, 400, false)
	require.NotNil(t, second)
	require.True(t, tbl.Finished())

	assert.Len(t, first.Node.ByTag("caption"), 1)
	assert.Empty(t, second.Node.ByTag("caption"))
	assert.Len(t, first.Node.ByTag("colgroup"), 1)
	assert.Len(t, second.Node.ByTag("colgroup"), 1)

	assert.Len(t, first.Node.ByTag("thead"), 1)
	assert.Len(t, first.Node.ByTag("thead")[0].ElementChildren(), 1)
	assert.Len(t, second.Node.ByTag("thead")[0].ElementChildren(), 2)

	state, _ := first.Node.GetAttr("data-table-state")
	assert.Equal(t, "first-page", state)
	state, _ = second.Node.GetAttr("data-table-state")
	assert.Equal(t, "last-page", state)

	assert.Equal(t, []string{"a"}, lineItemIDs(first.Node))
	assert.Equal(t, []string{"b", "c"}, lineItemIDs(second.Node))
	assert.Len(t, tbl.Node.ByTag("tr"), 2, "body rows are moved out of the source table")
}

func TestFragmentWrappers(t *testing.T) {
	markup := `<div class="body"><section id="wrap">
		<h2 data-height="50">Items</h2>
		<div class="inner">` + tableMarkup("t", repeat(100, 5), nil) + `</div>
		<p data-height="10">after</p>
	</section></div>`
	src := sourceOf(t, markup)
	tbl := onlyTable(t, src)
	assert.Equal(t, 60.0, tbl.Lead)
	s := NewTableSplitter(nil)

	first := s.Split(tbl, 400, false)
	require.NotNil(t, first)
	assert.Equal(t, 2, first.Rows)
	assert.Equal(t, 330.0, first.Height)
	assert.True(t, first.Node.IsElement("section"))
	assert.Len(t, first.Node.ByTag("h2"), 1)
	assert.Len(t, first.Node.ByTag("p"), 1)
	assert.Len(t, first.Node.ByClass("inner"), 1)

	second := s.Split(tbl, 400, false)
	require.NotNil(t, second)
	assert.Equal(t, StateLast, second.State)
	assert.Equal(t, 3, second.Rows)
	assert.True(t, second.Node.IsElement("section"))
	assert.Empty(t, second.Node.ByTag("h2"))
	assert.Empty(t, second.Node.ByTag("p"))
	assert.Len(t, second.Node.ByTag("table"), 1)
}
