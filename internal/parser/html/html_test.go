package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := NewParser().ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestParseAndRenderRoundTrip(t *testing.T) {
	doc := parse(t, `<html><body><div class="a b"><p>Hi <b>there</b></p></div></body></html>`)
	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="a b"><p>Hi <b>there</b></p></div>`)
}

func TestClassHelpers(t *testing.T) {
	doc := parse(t, `<div id="x" class="header first-page"></div>`)
	n := doc.Root.FindFirst(func(n *Node) bool { return n.HasClass("header") })
	require.NotNil(t, n)
	assert.True(t, n.HasClass("first-page"))
	assert.False(t, n.HasClass("head"))

	n.AddClass("inner-pages")
	n.AddClass("header")
	assert.Equal(t, []string{"header", "first-page", "inner-pages"}, n.Classes())
}

func TestCloneIsIndependent(t *testing.T) {
	doc := parse(t, `<div class="src"><span>1</span><span>2</span></div>`)
	src := doc.Root.ByClass("src")[0]

	c := src.Clone()
	assert.Nil(t, c.Parent)
	c.FirstChild.SetText("changed")
	c.AddClass("copy")

	assert.Equal(t, "12", src.TextContent())
	assert.Equal(t, "changed2", c.TextContent())
	assert.False(t, src.HasClass("copy"))
}

func TestAppendMovesNode(t *testing.T) {
	doc := parse(t, `<div id="a"><p>x</p><p>y</p></div><div id="b"></div>`)
	a := doc.Root.FindFirst(func(n *Node) bool { v, _ := n.GetAttr("id"); return v == "a" })
	b := doc.Root.FindFirst(func(n *Node) bool { v, _ := n.GetAttr("id"); return v == "b" })

	first := a.FirstChild
	b.AppendChild(first)

	assert.Equal(t, "y", a.TextContent())
	assert.Equal(t, "x", b.TextContent())
	assert.Same(t, b, first.Parent)
	assert.Nil(t, first.NextSibling)
}

func TestInsertBeforeAndDetach(t *testing.T) {
	root := NewElement("div")
	c := NewElement("span")
	root.AppendChild(c)
	a := NewElement("em")
	root.InsertBefore(a, c)
	assert.Same(t, a, root.FirstChild)
	assert.Same(t, c, root.LastChild)

	a.Detach()
	assert.Same(t, c, root.FirstChild)
	assert.Nil(t, c.PrevSibling)
	c.Detach()
	assert.Nil(t, root.FirstChild)
	assert.Nil(t, root.LastChild)
}

func TestFindAllDocumentOrder(t *testing.T) {
	doc := parse(t, `<div class="k">1<div class="k">2</div></div><p class="k">3</p>`)
	var got []string
	for _, n := range doc.Root.ByClass("k") {
		got = append(got, strings.TrimSpace(n.FirstChild.Data))
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestRenderNode(t *testing.T) {
	n := NewElement("td", "amount")
	n.SetText("10.00")
	out, err := RenderNode(n)
	require.NoError(t, err)
	assert.Equal(t, `<td class="amount">10.00</td>`, out)
}
