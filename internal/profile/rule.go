package profile

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/entity"
	"sigs.k8s.io/yaml"
)

//go:embed rules.yaml
var defaultRules []byte

// Signature is a predicate over a device: exact vendor+device id,
// vendor-only wildcard, or capability-tag presence. Exactly one of the
// three forms must be set.
type Signature struct {
	Vendor string `json:"vendor,omitempty"`
	Device string `json:"device,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

func (s Signature) Matches(d entity.Device) bool {
	switch {
	case s.Tag != "":
		return d.HasTag(s.Tag)
	case s.Device != "":
		return d.VendorID == s.Vendor && d.DeviceID == s.Device
	default:
		return s.Vendor != "" && d.VendorID == s.Vendor
	}
}

func (s Signature) validate() error {
	switch {
	case s.Tag != "":
		if s.Vendor != "" || s.Device != "" {
			return fmt.Errorf("tag signature must not carry ids")
		}
	case s.Device != "":
		if s.Vendor == "" {
			return fmt.Errorf("device id without vendor id")
		}
	case s.Vendor == "":
		return fmt.Errorf("empty signature")
	}
	return nil
}

// Rule pairs a hardware signature with a named configuration
// contribution.
type Rule struct {
	Name     string    `json:"name"`
	Match    Signature `json:"match"`
	Settings []string  `json:"settings"`
}

// Table is the static, read-only rule table. It is loaded once at
// process start, validated before any probing begins, and never mutated.
type Table struct {
	Rules []Rule `json:"rules"`
}

// LoadTable parses and validates a rule table.
func LoadTable(data []byte) (Table, error) {
	var table Table
	if err := yaml.UnmarshalStrict(data, &table); err != nil {
		return Table{}, fmt.Errorf("rule table: %w", err)
	}
	if err := table.validate(); err != nil {
		return Table{}, fmt.Errorf("rule table: %w", err)
	}
	for i := range table.Rules {
		table.Rules[i].Match.Vendor = strings.ToLower(table.Rules[i].Match.Vendor)
		table.Rules[i].Match.Device = strings.ToLower(table.Rules[i].Match.Device)
	}
	return table, nil
}

// DefaultTable returns the table shipped with the binary.
func DefaultTable() (Table, error) {
	return LoadTable(defaultRules)
}

func (t Table) validate() error {
	seen := make(map[string]struct{})
	for i, rule := range t.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if _, ok := seen[rule.Name]; ok {
			return fmt.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if err := rule.Match.validate(); err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		if len(rule.Settings) == 0 {
			return fmt.Errorf("rule %q has no settings", rule.Name)
		}
		for _, setting := range rule.Settings {
			if strings.TrimSpace(setting) == "" {
				return fmt.Errorf("rule %q has an empty setting", rule.Name)
			}
		}
	}
	return nil
}
