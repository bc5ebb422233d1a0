package incident

import (
	"errors"
	"fmt"
	"time"
)

// Template names accepted by Template and Store.ApplyTemplate.
const (
	TemplateBaseline     = "Baseline"
	TemplateMinimalFacts = "Minimal facts only"
)

// ErrUnknownTemplate is returned for a template name that does not exist.
var ErrUnknownTemplate = errors.New("unknown documentation template")

// TemplateNames lists the quick templates in display order.
func TemplateNames() []string { return []string{TemplateBaseline, TemplateMinimalFacts} }

// Template builds the named quick template as of now. Minimal facts stamps
// the current UTC date and time and notes the recording status.
func Template(name string, now time.Time) (Record, error) {
	switch name {
	case TemplateBaseline:
		return Defaults(), nil
	case TemplateMinimalFacts:
		r := Defaults()
		now = now.UTC()
		r.StopDate = now.Format(time.DateOnly)
		r.StopTime = now.Format("15:04")
		r.Recording = "Dash/body camera noted. Personal recording saved."
		return r, nil
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}
