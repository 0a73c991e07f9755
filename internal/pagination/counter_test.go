package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func profileWith(single, first, inner, last, content float64) HeightProfile {
	return HeightProfile{
		BodyAvailable: [4]float64{single, first, inner, last},
		BodyContent:   content,
	}
}

func TestCountPages(t *testing.T) {
	tests := []struct {
		name    string
		profile HeightProfile
		want    int
	}{
		{"empty", profileWith(850, 850, 900, 900, 0), 1},
		{"exact single fit", profileWith(850, 850, 900, 900, 850), 1},
		{"just over single", profileWith(850, 850, 900, 900, 851), 2},
		{"first then last exact", profileWith(850, 850, 900, 900, 1750), 2},
		{"needs an inner page", profileWith(850, 850, 900, 900, 1751), 3},
		{"several inner pages", profileWith(1000, 800, 1000, 900, 800+3*1000+900), 5},
		{"bigger single than first", profileWith(1000, 500, 1000, 1000, 900), 1},
		{"first holds all but single does not", profileWith(400, 500, 1000, 1000, 450), 2},
		{"inner pages hold nothing", profileWith(100, 100, 0, 100, 500), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountPages(tt.profile))
		})
	}
}

func TestCountPagesMonotonic(t *testing.T) {
	prev := 0
	for h := 0.0; h < 10000; h += 7 {
		p := profileWith(850, 800, 950, 900, 0)
		p.TableContent = h
		n := CountPages(p)
		assert.GreaterOrEqual(t, n, prev, "content %v", h)
		if h <= 850 {
			assert.Equal(t, 1, n)
		}
		prev = n
	}
}
