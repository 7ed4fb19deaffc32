package entity

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Device is the normalized, bus-agnostic entity stored in the inventory.
type Device struct {
	Key DeviceKey

	// VendorID and DeviceID are the canonical (lowercased) ids of the
	// merged records.
	VendorID string
	DeviceID string

	// Name is the resolved human-readable name, or the raw description
	// when no canonical name could be resolved. Never fabricated.
	Name string

	// Class is the canonical bus-specific class code.
	Class string

	// Tags holds the capability tags inferred during normalization, in a
	// fixed classification-table order.
	Tags []string

	// Flags holds cpu feature flags carried over from the raw records.
	Flags []string

	// Inconsistent marks a device whose duplicate records disagreed on
	// vendor or device id. The device is kept, the first ids win.
	Inconsistent bool
}

func (d Device) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (d Device) HasFlag(flag string) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (d Device) String() string {
	return fmt.Sprintf("%s %s:%s %q", d.Key, d.VendorID, d.DeviceID, d.Name)
}

// Inventory is the ordered, deduplicated set of devices of one pipeline
// run. Device order is first-seen and stable across merges. An inventory
// is owned by exactly one run and never shared.
type Inventory struct {
	Devices []Device

	// Degraded maps a bus to the reason its probe produced no usable
	// data. A degraded bus never suppresses devices found by another bus.
	Degraded map[Bus]string

	// Inconsistencies lists identity merge conflicts for caller reporting.
	Inconsistencies []string
}

func (i Inventory) IsDegraded(b Bus) bool {
	_, ok := i.Degraded[b]
	return ok
}

// DevicesOn returns the devices of one bus, in discovery order.
func (i Inventory) DevicesOn(b Bus) []Device {
	var out []Device
	for _, d := range i.Devices {
		if d.Key.Bus == b {
			out = append(out, d)
		}
	}
	return out
}

// Hash returns a digest of the inventory content. Two inventories built
// from the same probe outputs hash identically.
func (i Inventory) Hash() string {
	var sb strings.Builder

	for _, d := range i.Devices {
		fmt.Fprintf(&sb, "%s%s%s%s%s", d.Key, d.VendorID, d.DeviceID, d.Name, d.Class)
		fmt.Fprintf(&sb, "%s%s%v", strings.Join(d.Tags, ","), strings.Join(d.Flags, ","), d.Inconsistent)
	}
	for _, b := range Buses {
		if reason, ok := i.Degraded[b]; ok {
			fmt.Fprintf(&sb, "%s=%s", b, reason)
		}
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", sum)
}
