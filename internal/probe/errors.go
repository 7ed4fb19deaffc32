package probe

import (
	"errors"
	"fmt"
)

// Soft probe failures. They degrade one bus and never abort the pipeline.
var (
	// ErrToolUnavailable means the enumeration tool could not be located
	// or started on this host.
	ErrToolUnavailable = errors.New("enumeration tool unavailable")

	// ErrTimeout means the enumeration tool exceeded its allotted time
	// and was terminated.
	ErrTimeout = errors.New("enumeration tool timed out")

	// ErrNoRecords means the probe completed but yielded no usable
	// records.
	ErrNoRecords = errors.New("probe yielded no usable records")
)

// IsSoft reports whether err is a recoverable probe failure localized to
// one bus.
func IsSoft(err error) bool {
	return errors.Is(err, ErrToolUnavailable) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrNoRecords)
}

// MalformedLine records one line of tool output that did not match the
// bus grammar. Adapters keep parsing past malformed lines; a line is
// either parsed into a record or recorded here, never silently dropped.
type MalformedLine struct {
	Number int
	Raw    string
}

func (m MalformedLine) String() string {
	return fmt.Sprintf("line %d: %q", m.Number, m.Raw)
}
