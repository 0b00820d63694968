// Package job runs G-code line streams through a vm.Machine.
package job

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/report"
	"github.com/mastercactapus/gcinterp/vm"
)

// Summary describes a finished (or aborted) run.
type Summary struct {
	report.Tally

	Started  time.Time
	Finished time.Time

	// Final is the modal state after the last line.
	Final vm.State
}

func (s *Summary) Duration() time.Duration { return s.Finished.Sub(s.Started) }

// Run feeds every line from r to m, reporting each result to rep.
//
// Failures of individual lines are only reported. Run stops early when
// the reader or reporter fail, or when ctx is done; ctx is checked
// before each line is requested.
func Run(ctx context.Context, r gcode.Reader, m *vm.Machine, rep report.Reporter) (*Summary, error) {
	s := &Summary{Started: time.Now()}
	defer func() {
		s.Final = m.State()
		s.Finished = time.Now()
	}()

	var last int
	for {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		ln, err := r.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return s, fmt.Errorf("read after line %d: %w", last, err)
		}

		last = ln.N

		res := m.Exec(ln.Text)
		res.Line = ln.N
		s.Tally.Report(res)

		if rep == nil {
			continue
		}
		err = rep.Report(res)
		if err != nil {
			return s, fmt.Errorf("report line %d: %w", ln.N, err)
		}
	}
}
