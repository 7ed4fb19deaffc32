package entity

type Bus int

const (
	// PCIBus covers devices enumerated from the PCI bus.
	PCIBus Bus = iota
	// USBBus covers devices enumerated from the USB bus.
	USBBus
	// CPUBus covers the logical CPU topology.
	CPUBus
	// UnknownBus indicates a bus name that could not be recognized.
	UnknownBus
)

// Buses lists the known buses in their fixed probing order.
var Buses = []Bus{PCIBus, USBBus, CPUBus}

func (b Bus) String() string {
	switch b {
	case PCIBus:
		return "pci"
	case USBBus:
		return "usb"
	case CPUBus:
		return "cpu"
	default:
		return "unknown"
	}
}

func BusFromString(val string) Bus {
	switch val {
	case "pci":
		return PCIBus
	case "usb":
		return USBBus
	case "cpu":
		return CPUBus
	default:
		return UnknownBus
	}
}

func (b Bus) OneOf(buses ...Bus) bool {
	for _, o := range buses {
		if b == o {
			return true
		}
	}
	return false
}
