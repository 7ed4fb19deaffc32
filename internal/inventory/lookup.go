package inventory

import (
	_ "embed"
	"strings"

	"github.com/jaypipes/pcidb"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

//go:embed vendors.yaml
var vendorsTable []byte

// NameResolver resolves canonical names for vendor/device id pairs. A
// miss returns None; names are never fabricated.
type NameResolver interface {
	DeviceName(bus entity.Bus, vendorID, deviceID string) entity.Option[string]
	VendorName(bus entity.Bus, vendorID string) entity.Option[string]
}

// Lookup resolves names from static id databases: the pci.ids database
// for PCI, an embedded vendor table for USB and CPU. All data is loaded
// once at startup and read-only afterwards.
type Lookup struct {
	pci        *pcidb.PCIDB
	usbVendors map[string]string
	cpuVendors map[string]string
}

func NewLookup() *Lookup {
	l := &Lookup{}

	db, err := pcidb.New()
	if err != nil {
		// resolution misses leave raw descriptions unchanged, so running
		// without the database only means less friendly names
		zap.S().Warnw("pci id database unavailable, pci name resolution disabled", "error", err)
	} else {
		l.pci = db
	}

	var table struct {
		USB map[string]string `json:"usb"`
		CPU map[string]string `json:"cpu"`
	}
	if err := yaml.Unmarshal(vendorsTable, &table); err != nil {
		// the table ships with the binary; failing to parse it is a
		// build defect, not a runtime hardware condition
		zap.S().Panicw("embedded vendor table malformed", "error", err)
	}
	l.usbVendors = table.USB
	l.cpuVendors = table.CPU

	return l
}

func (l *Lookup) DeviceName(bus entity.Bus, vendorID, deviceID string) entity.Option[string] {
	if bus != entity.PCIBus || l.pci == nil {
		return entity.NoneOf[string]()
	}
	product, ok := l.pci.Products[strings.ToLower(vendorID+deviceID)]
	if !ok || product.Name == "" {
		return entity.NoneOf[string]()
	}
	return entity.Some(product.Name)
}

func (l *Lookup) VendorName(bus entity.Bus, vendorID string) entity.Option[string] {
	switch bus {
	case entity.PCIBus:
		if l.pci == nil {
			return entity.NoneOf[string]()
		}
		vendor, ok := l.pci.Vendors[strings.ToLower(vendorID)]
		if !ok || vendor.Name == "" {
			return entity.NoneOf[string]()
		}
		return entity.Some(vendor.Name)
	case entity.USBBus:
		if name, ok := l.usbVendors[strings.ToLower(vendorID)]; ok {
			return entity.Some(name)
		}
	case entity.CPUBus:
		if name, ok := l.cpuVendors[strings.ToLower(vendorID)]; ok {
			return entity.Some(name)
		}
	}
	return entity.NoneOf[string]()
}
