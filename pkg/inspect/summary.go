package inspect

import (
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/render"
)

// Summary is the JSON form of one committed pass.
type Summary struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Operations int      `json:"operations"`
	Created    int      `json:"created"`
	Moved      int      `json:"moved"`
	Removed    int      `json:"removed"`
	Rendered   int      `json:"rendered"`
	DurationMS float64  `json:"durationMs"`
	Errors     []string `json:"errors,omitempty"`
	Ops        []string `json:"ops,omitempty"`
}

// maxOps bounds the operation listing of a summary.
const maxOps = 64

// Summarize describes rc.
func Summarize(rc *render.RenderContext) Summary {
	perf := rc.Perf()
	s := Summary{
		ID:         rc.ID(),
		Kind:       rc.Kind(),
		Operations: perf.Operations,
		Created:    perf.Created,
		Moved:      perf.Moved,
		Removed:    perf.Removed,
		Rendered:   perf.ComponentsRendered,
		DurationMS: float64(perf.Duration.Microseconds()) / 1000,
	}
	for _, err := range rc.Errors() {
		if e := errors.FromError(err, ""); e != nil && e.Code != "" {
			s.Errors = append(s.Errors, e.Code+": "+e.Message)
			continue
		}
		s.Errors = append(s.Errors, err.Error())
	}
	for i, op := range rc.Operations() {
		if i == maxOps {
			break
		}
		s.Ops = append(s.Ops, op.String())
	}
	return s
}
