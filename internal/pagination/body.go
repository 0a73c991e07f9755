package pagination

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// Progress decides what happens when the next block does not fit on a page
// whose body is still empty.
type Progress int

const (
	// ProgressForce places the block (or one table row) anyway.
	ProgressForce Progress = iota
	// ProgressSkip leaves the page body empty and tries again on the next page.
	ProgressSkip
)

func (p Progress) String() string {
	if p == ProgressSkip {
		return "skip"
	}
	return "force"
}

// ParseProgress maps "force" or "skip" to a policy.
func ParseProgress(s string) (Progress, error) {
	switch s {
	case "", "force":
		return ProgressForce, nil
	case "skip":
		return ProgressSkip, nil
	}
	return 0, fmt.Errorf("unknown progress policy %q", s)
}

// BodySplitter fills a page body from the pool of body blocks.
type BodySplitter struct {
	tables   *TableSplitter
	progress Progress
	log      *zap.Logger
}

// NewBodySplitter creates a body splitter delegating tables to tables.
func NewBodySplitter(tables *TableSplitter, progress Progress, log *zap.Logger) *BodySplitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &BodySplitter{tables: tables, progress: progress, log: log}
}

// Fill moves blocks from src into body in document order until avail px are
// used up. It stops at the first block that cannot be placed completely so
// nothing is reordered; a table that was only partly placed ends the page.
// It returns the height used.
func (s *BodySplitter) Fill(body *html.Node, src *Source, avail float64, page int) (float64, []Diagnostic) {
	var (
		remaining = avail
		placed    int
		diags     []Diagnostic
	)

	for !src.Done() {
		b := src.Blocks[src.next]
		force := s.progress == ProgressForce && placed == 0

		if t := b.Table; t != nil {
			frag := s.tables.Split(t, remaining, force)
			if frag == nil {
				diags = append(diags, Diagnostic{
					Kind:    DiagSkipped,
					Page:    page,
					Message: fmt.Sprintf("table fragment does not fit in %.1fpx, %d rows pending", remaining, len(t.Pending())),
				})
				s.log.Warn("Table fragment skipped", zap.Int("page", page), zap.Float64("available", remaining), zap.Int("pending", len(t.Pending())))
				break
			}
			if frag.Forced {
				diags = append(diags, Diagnostic{
					Kind:    DiagForced,
					Page:    page,
					Message: fmt.Sprintf("table fragment of %.1fpx forced into %.1fpx", frag.Height, remaining),
				})
				s.log.Warn("Table fragment forced", zap.Int("page", page), zap.Float64("height", frag.Height), zap.Float64("available", remaining))
			}
			body.AppendChild(frag.Node)
			remaining -= frag.Height
			placed++
			s.log.Debug("Placed table fragment",
				zap.Int("page", page),
				zap.String("state", frag.State.String()),
				zap.Int("rows", frag.Rows),
				zap.Float64("height", frag.Height))
			if !t.Finished() {
				break
			}
			src.next++
			continue
		}

		if !fits(b.Height, remaining) {
			if !force {
				break
			}
			diags = append(diags, Diagnostic{
				Kind:    DiagForced,
				Page:    page,
				Message: fmt.Sprintf("block of %.1fpx forced into %.1fpx", b.Height, remaining),
			})
			s.log.Warn("Block forced", zap.Int("page", page), zap.Float64("height", b.Height), zap.Float64("available", remaining))
		}
		body.AppendChild(b.Node)
		remaining -= b.Height
		placed++
		src.next++
	}
	return avail - remaining, diags
}
