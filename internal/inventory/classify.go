package inventory

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/entity"
	"sigs.k8s.io/yaml"
)

//go:embed classes.yaml
var classesTable []byte

type classRule struct {
	// Prefix matches the head of a bus class code (pci, usb).
	Prefix string `json:"prefix,omitempty"`
	// Flag matches a cpu feature flag.
	Flag string   `json:"flag,omitempty"`
	Tags []string `json:"tags"`
}

// Classifier assigns capability tags from the static classification
// table. Rules are evaluated in table order so tag order is stable.
type Classifier struct {
	pci []classRule
	usb []classRule
	cpu []classRule
}

func NewClassifier() (*Classifier, error) {
	var table struct {
		PCI []classRule `json:"pci"`
		USB []classRule `json:"usb"`
		CPU []classRule `json:"cpu"`
	}
	if err := yaml.Unmarshal(classesTable, &table); err != nil {
		return nil, fmt.Errorf("classification table: %w", err)
	}
	for _, rules := range [][]classRule{table.PCI, table.USB, table.CPU} {
		for _, r := range rules {
			if len(r.Tags) == 0 {
				return nil, fmt.Errorf("classification table: rule %+v has no tags", r)
			}
		}
	}
	return &Classifier{pci: table.PCI, usb: table.USB, cpu: table.CPU}, nil
}

// Tags returns the capability tags of a device. A device may carry zero,
// one or several tags.
func (c *Classifier) Tags(d entity.Device) []string {
	var rules []classRule
	switch d.Key.Bus {
	case entity.PCIBus:
		rules = c.pci
	case entity.USBBus:
		rules = c.usb
	case entity.CPUBus:
		rules = c.cpu
	}

	var tags []string
	for _, rule := range rules {
		switch {
		case rule.Prefix != "" && strings.HasPrefix(d.Class, rule.Prefix):
		case rule.Flag != "" && d.HasFlag(rule.Flag):
		default:
			continue
		}
		for _, tag := range rule.Tags {
			if !contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
