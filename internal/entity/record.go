package entity

import "fmt"

// RawRecord is one device as reported by a single probe, before any
// normalization. A record is immutable once the probe adapter produced it.
type RawRecord struct {
	Bus Bus

	// Address is the bus-specific location of the device: "00:1f.6" for
	// PCI, "001:004" for USB, the logical core index for CPU.
	Address string

	// VendorID and DeviceID identify the device on its bus. For PCI and
	// USB these are four-digit hex ids; for CPU the vendor string and
	// model number reported by the identification probe.
	VendorID string
	DeviceID string

	// Class is the bus-specific class code. Empty for CPU records.
	Class string

	// Description is the human-readable text the tool printed for the
	// device, possibly empty.
	Description string

	// Flags holds cpu feature flags. Empty for PCI and USB records.
	Flags []string
}

func (r RawRecord) Key() DeviceKey {
	return DeviceKey{Bus: r.Bus, Address: r.Address}
}

// DeviceKey is the stable identity of a device within one inventory.
type DeviceKey struct {
	Bus     Bus
	Address string
}

func (k DeviceKey) String() string {
	return fmt.Sprintf("%s/%s", k.Bus, k.Address)
}
