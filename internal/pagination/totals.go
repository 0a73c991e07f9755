package pagination

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/amount"
	"github.com/gompdf/repaginate/internal/parser/html"
)

// TableTotal records what was written into one table fragment.
type TableTotal struct {
	Page      int
	CarryOver float64
	Sum       float64
	Total     float64
}

// RunningTotalCalculator carries amounts from one table fragment to the next.
type RunningTotalCalculator struct {
	vocab   Vocabulary
	amounts *amount.Formatter
	log     *zap.Logger
}

// NewRunningTotalCalculator creates a calculator writing amounts with f.
func NewRunningTotalCalculator(vocab Vocabulary, f *amount.Formatter, log *zap.Logger) *RunningTotalCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &RunningTotalCalculator{vocab: vocab.withDefaults(), amounts: f, log: log}
}

// Apply walks the splittable tables of pages in order. Each table receives the
// running total so far in its carry-over cells and the running total including
// its own amounts in its running-total cells. Rows for a zero value are removed.
func (c *RunningTotalCalculator) Apply(pages []*Page) ([]TableTotal, []Diagnostic) {
	var (
		running float64
		totals  []TableTotal
		diags   []Diagnostic
	)
	for _, p := range pages {
		tables := p.Node.FindAll(func(n *html.Node) bool {
			return n.IsElement("table") && n.HasClass(c.vocab.Splittable)
		})
		for _, t := range tables {
			tt := TableTotal{Page: p.Number, CarryOver: running}

			if c.amounts.IsZero(running) {
				c.removeRows(t, c.vocab.CarryOver)
			} else {
				c.write(t, c.vocab.CarryOver, running)
			}

			for _, cell := range t.ByClass(c.vocab.Amount) {
				if cell.HasClass(c.vocab.CarryOver) || cell.HasClass(c.vocab.RunningTotal) {
					continue
				}
				text := strings.TrimSpace(cell.TextContent())
				r := c.amounts.Parse(text)
				if !r.OK {
					diags = append(diags, Diagnostic{
						Kind:    DiagAmountParse,
						Page:    p.Number,
						Message: fmt.Sprintf("amount %q counted as 0: %v", text, r.Err),
					})
					c.log.Debug("Amount not parsed", zap.Int("page", p.Number), zap.String("text", text), zap.Error(r.Err))
				}
				tt.Sum += r.ValueOr(0)
			}

			tt.Total = running + tt.Sum
			if c.amounts.IsZero(tt.Total) {
				c.removeRows(t, c.vocab.RunningTotal)
			} else {
				c.write(t, c.vocab.RunningTotal, tt.Total)
			}
			running = tt.Total
			totals = append(totals, tt)
		}
	}
	return totals, diags
}

// write sets every non-row element with class in table to v.
func (c *RunningTotalCalculator) write(table *html.Node, class string, v float64) {
	text := c.amounts.Format(v)
	for _, n := range table.ByClass(class) {
		if n.IsElement("tr") {
			continue
		}
		n.SetText(text)
	}
}

func (c *RunningTotalCalculator) removeRows(table *html.Node, class string) {
	for _, n := range table.ByClass(class) {
		if n.IsElement("tr") {
			n.Detach()
		}
	}
}
