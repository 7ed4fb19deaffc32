package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/profile"
)

// ErrEmptySetting indicates a rule that contributed an empty
// configuration line. The table is validated at load time, so hitting
// this at synthesis is a static-data contract violation, not a runtime
// hardware condition.
var ErrEmptySetting = errors.New("rule contributed an empty setting")

// Line is one configuration line tagged with the rule that produced it.
// The rule name is used only for diagnostics and traceability.
type Line struct {
	Text string
	Rule string
}

// Fragment is the ordered, deduplicated configuration output of one run.
type Fragment struct {
	Lines []Line
}

// Synthesize renders the matcher's ordered output into a fragment.
// Exact duplicate lines collapse to their first occurrence. When two
// rules contribute different values for the same configuration key, the
// later rule in table order wins; the winning line keeps the position of
// the key's first occurrence so output stays diff-friendly. Ordering is
// solely a function of the match order, never of map traversal.
func Synthesize(matches []profile.Match) (Fragment, error) {
	var fragment Fragment
	seen := make(map[string]struct{})
	byKey := make(map[string]int)

	for _, match := range matches {
		for _, setting := range match.Rule.Settings {
			text := strings.TrimSpace(setting)
			if text == "" {
				return Fragment{}, fmt.Errorf("rule %q: %w", match.Rule.Name, ErrEmptySetting)
			}
			if _, dup := seen[text]; dup {
				continue
			}
			key := settingKey(text)
			if i, ok := byKey[key]; ok {
				// same key, different value: later rule overrides in place
				delete(seen, fragment.Lines[i].Text)
				seen[text] = struct{}{}
				fragment.Lines[i] = Line{Text: text, Rule: match.Rule.Name}
				continue
			}
			seen[text] = struct{}{}
			byKey[key] = len(fragment.Lines)
			fragment.Lines = append(fragment.Lines, Line{Text: text, Rule: match.Rule.Name})
		}
	}
	return fragment, nil
}

// settingKey extracts the configuration key of a `key = value;` line. A
// line with no assignment is its own key.
func settingKey(text string) string {
	if i := strings.Index(text, "="); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}

// Render returns the fragment as plain text, one line per contribution.
// Same matches in, byte-identical text out.
func (f Fragment) Render() string {
	var sb strings.Builder
	for _, line := range f.Lines {
		sb.WriteString(line.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderWithHeader prepends a generated-file header. The machine id is
// stable per machine, so the full output stays byte-identical across
// runs on identical hardware.
func (f Fragment) RenderWithHeader(machineID string) string {
	var sb strings.Builder
	sb.WriteString("# Generated by hwdetect-ng. Do not edit.\n")
	if machineID != "" {
		fmt.Fprintf(&sb, "# machine-id: %s\n", machineID)
	}
	if len(f.Lines) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(f.Render())
	return sb.String()
}
