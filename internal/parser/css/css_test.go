package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		/* page box */
		.page { height: 297mm; }
		.header.first-page, .footer { margin: 10px 0 !important; padding:4px }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)

	assert.Equal(t, []string{".page"}, sheet.Rules[0].Selectors)
	require.Len(t, sheet.Rules[0].Declarations, 1)
	assert.Equal(t, "height", sheet.Rules[0].Declarations[0].Property)
	assert.Equal(t, "297mm", sheet.Rules[0].Declarations[0].Value)

	assert.Equal(t, []string{".header.first-page", ".footer"}, sheet.Rules[1].Selectors)
	require.Len(t, sheet.Rules[1].Declarations, 2)
	assert.True(t, sheet.Rules[1].Declarations[0].Important)
	assert.Equal(t, "10px 0", sheet.Rules[1].Declarations[0].Value)
	assert.Equal(t, "padding", sheet.Rules[1].Declarations[1].Property)
}

func TestAtRulesAreSkipped(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		@charset "utf-8";
		@import url(print.css);
		@media print { .x { color: red } }
		@page { margin: 0 }
		td { padding: 2px }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []string{"td"}, sheet.Rules[0].Selectors)
}

func TestParseDeclarations(t *testing.T) {
	decls := NewParser().ParseDeclarations("height: 80px; COLOR : #fff ;; bogus")
	require.Len(t, decls, 2)
	assert.Equal(t, "height", decls[0].Property)
	assert.Equal(t, "color", decls[1].Property)
	assert.Equal(t, "#fff", decls[1].Value)
}

func TestUnterminatedComment(t *testing.T) {
	sheet, err := NewParser().ParseString(`p { margin: 0 } /* open`)
	require.NoError(t, err)
	assert.Len(t, sheet.Rules, 1)
}
