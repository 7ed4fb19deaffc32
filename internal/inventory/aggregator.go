package inventory

import (
	"fmt"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/entity"
	"github.com/tupyy/hwdetect-ng/internal/probe"
	"go.uber.org/zap"
)

// Aggregator merges per-bus probe reports into one inventory, resolving
// duplicates and applying per-bus normalization.
type Aggregator struct {
	resolver   NameResolver
	classifier *Classifier
}

func NewAggregator(resolver NameResolver, classifier *Classifier) *Aggregator {
	return &Aggregator{resolver: resolver, classifier: classifier}
}

// Aggregate builds the inventory from the reports. Reports must be given
// in the fixed bus order; device order in the result is first-seen.
// Aggregation is idempotent: feeding the same record sequence twice
// yields the same inventory.
func (a *Aggregator) Aggregate(reports []probe.Report) entity.Inventory {
	inv := entity.Inventory{Degraded: make(map[entity.Bus]string)}
	index := make(map[entity.DeviceKey]int)

	for _, report := range reports {
		for _, record := range report.Records {
			record = normalize(record)
			key := record.Key()
			i, seen := index[key]
			if !seen {
				index[key] = len(inv.Devices)
				inv.Devices = append(inv.Devices, newDevice(record))
				continue
			}
			if conflict := merge(&inv.Devices[i], record); conflict != "" {
				inv.Devices[i].Inconsistent = true
				inv.Inconsistencies = append(inv.Inconsistencies, conflict)
				zap.S().Warnw("identity merge conflict, device kept", "key", key, "conflict", conflict)
			}
		}
	}

	// names and tags are resolved after merging so lookups see the
	// merged fields
	for i := range inv.Devices {
		a.finish(&inv.Devices[i])
	}
	return inv
}

// normalize applies the per-bus normalization rules: id casing and
// whitespace trimming.
func normalize(r entity.RawRecord) entity.RawRecord {
	r.VendorID = strings.ToLower(strings.TrimSpace(r.VendorID))
	r.DeviceID = strings.ToLower(strings.TrimSpace(r.DeviceID))
	r.Class = strings.ToLower(strings.TrimSpace(r.Class))
	r.Description = strings.TrimSpace(r.Description)
	return r
}

func newDevice(r entity.RawRecord) entity.Device {
	return entity.Device{
		Key:      r.Key(),
		VendorID: r.VendorID,
		DeviceID: r.DeviceID,
		Class:    r.Class,
		Name:     r.Description,
		Flags:    append([]string(nil), r.Flags...),
	}
}

// merge folds a colliding record into the device: a later non-empty
// field wins, empty never overwrites. A vendor or device id mismatch is
// returned as a conflict description; the device keeps its first ids and
// is never dropped.
func merge(d *entity.Device, r entity.RawRecord) string {
	var conflict string
	switch {
	case d.VendorID != "" && r.VendorID != "" && d.VendorID != r.VendorID:
		conflict = fmt.Sprintf("%s: vendor id %s conflicts with %s", d.Key, r.VendorID, d.VendorID)
	case d.DeviceID != "" && r.DeviceID != "" && d.DeviceID != r.DeviceID:
		conflict = fmt.Sprintf("%s: device id %s conflicts with %s", d.Key, r.DeviceID, d.DeviceID)
	default:
		if r.VendorID != "" {
			d.VendorID = r.VendorID
		}
		if r.DeviceID != "" {
			d.DeviceID = r.DeviceID
		}
	}

	if r.Class != "" {
		d.Class = r.Class
	}
	if r.Description != "" {
		d.Name = r.Description
	}
	for _, flag := range r.Flags {
		if !d.HasFlag(flag) {
			d.Flags = append(d.Flags, flag)
		}
	}
	return conflict
}

func (a *Aggregator) finish(d *entity.Device) {
	if genericName(d.Name) {
		if name := a.resolver.DeviceName(d.Key.Bus, d.VendorID, d.DeviceID); !name.None {
			d.Name = name.Value
		}
	}
	d.Tags = a.classifier.Tags(*d)
}

// genericName reports whether a raw description carries no real
// information: empty, or the placeholder lspci prints for unknown
// devices. A lookup miss leaves the description as is.
func genericName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "" || lower == "unknown" || strings.HasPrefix(lower, "device ")
}
