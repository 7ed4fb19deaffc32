package profile

import (
	"github.com/tupyy/hwdetect-ng/internal/entity"
)

// Match pairs one rule with one device that satisfied it.
type Match struct {
	Rule   Rule
	Device entity.Device
}

// Matcher evaluates the rule table against an inventory.
type Matcher struct {
	table Table
}

func NewMatcher(table Table) *Matcher {
	return &Matcher{table: table}
}

// Match returns every (rule, device) pair, rules in table order, devices
// in discovery order. A device may satisfy several rules and a rule may
// match several devices; every pair is recorded, there is no
// first-match-wins shortcut.
func (m *Matcher) Match(inv entity.Inventory) []Match {
	var matches []Match
	for _, rule := range m.table.Rules {
		for _, device := range inv.Devices {
			if rule.Match.Matches(device) {
				matches = append(matches, Match{Rule: rule, Device: device})
			}
		}
	}
	return matches
}
