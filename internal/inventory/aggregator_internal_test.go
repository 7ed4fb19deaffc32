package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"github.com/tupyy/hwdetect-ng/internal/probe"
)

type staticResolver struct {
	devices map[string]string
	vendors map[string]string
}

func (s staticResolver) DeviceName(bus entity.Bus, vendorID, deviceID string) entity.Option[string] {
	if name, ok := s.devices[vendorID+deviceID]; ok {
		return entity.Some(name)
	}
	return entity.NoneOf[string]()
}

func (s staticResolver) VendorName(bus entity.Bus, vendorID string) entity.Option[string] {
	if name, ok := s.vendors[vendorID]; ok {
		return entity.Some(name)
	}
	return entity.NoneOf[string]()
}

func newTestAggregator(t *testing.T, resolver NameResolver) *Aggregator {
	t.Helper()
	classifier, err := NewClassifier()
	require.NoError(t, err)
	return NewAggregator(resolver, classifier)
}

func pciRecord(address, vendor, device, class, description string) entity.RawRecord {
	return entity.RawRecord{
		Bus:         entity.PCIBus,
		Address:     address,
		VendorID:    vendor,
		DeviceID:    device,
		Class:       class,
		Description: description,
	}
}

func TestAggregateMergesDuplicateKey(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	// same identity key reported twice, one record missing the description
	reports := []probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:1f.6", "8086", "15d7", "0200", ""),
			pciRecord("00:1f.6", "8086", "15d7", "0200", "Ethernet Connection I219-LM"),
		}},
	}

	inv := aggregator.Aggregate(reports)

	require.Len(t, inv.Devices, 1)
	assert.Equal(t, "Ethernet Connection I219-LM", inv.Devices[0].Name)
	assert.False(t, inv.Devices[0].Inconsistent)
	assert.Empty(t, inv.Inconsistencies)
}

func TestAggregateEmptyNeverOverwrites(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	reports := []probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:1f.6", "8086", "15d7", "0200", "Ethernet Connection I219-LM"),
			pciRecord("00:1f.6", "8086", "15d7", "0200", ""),
		}},
	}

	inv := aggregator.Aggregate(reports)

	require.Len(t, inv.Devices, 1)
	assert.Equal(t, "Ethernet Connection I219-LM", inv.Devices[0].Name)
}

func TestAggregateIdempotent(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	records := []entity.RawRecord{
		pciRecord("00:02.0", "8086", "3ea0", "0300", "UHD Graphics 620"),
		pciRecord("00:1f.6", "8086", "15d7", "0200", ""),
		{Bus: entity.CPUBus, Address: "0", VendorID: "GenuineIntel", DeviceID: "142", Flags: []string{"vmx", "aes"}},
	}

	once := aggregator.Aggregate([]probe.Report{{Bus: entity.PCIBus, Records: records}})
	twice := aggregator.Aggregate([]probe.Report{
		{Bus: entity.PCIBus, Records: records},
		{Bus: entity.PCIBus, Records: records},
	})

	assert.Equal(t, once.Hash(), twice.Hash())
	assert.Equal(t, once.Devices, twice.Devices)
}

func TestAggregateIdentityConflict(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	reports := []probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:1f.6", "8086", "15d7", "0200", "Ethernet"),
			pciRecord("00:1f.6", "10de", "15d7", "0200", "Impostor"),
		}},
	}

	inv := aggregator.Aggregate(reports)

	// the device is kept and flagged, never dropped
	require.Len(t, inv.Devices, 1)
	assert.True(t, inv.Devices[0].Inconsistent)
	assert.Equal(t, "8086", inv.Devices[0].VendorID, "first identity wins")
	require.Len(t, inv.Inconsistencies, 1)
}

func TestAggregateNormalizesIDCasing(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	inv := aggregator.Aggregate([]probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:02.0", "10DE", "1EB8", "0300", ""),
		}},
	})

	require.Len(t, inv.Devices, 1)
	assert.Equal(t, "10de", inv.Devices[0].VendorID)
	assert.Equal(t, "1eb8", inv.Devices[0].DeviceID)
}

func TestAggregateNameResolution(t *testing.T) {
	resolver := staticResolver{devices: map[string]string{"808615d7": "Ethernet Connection (4) I219-LM"}}
	aggregator := newTestAggregator(t, resolver)

	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{
			name:        "empty description resolved",
			description: "",
			expected:    "Ethernet Connection (4) I219-LM",
		},
		{
			name:        "generic description resolved",
			description: "Device 15d7",
			expected:    "Ethernet Connection (4) I219-LM",
		},
		{
			name:        "real description kept",
			description: "Onboard Ethernet",
			expected:    "Onboard Ethernet",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inv := aggregator.Aggregate([]probe.Report{
				{Bus: entity.PCIBus, Records: []entity.RawRecord{
					pciRecord("00:1f.6", "8086", "15d7", "0200", test.description),
				}},
			})
			require.Len(t, inv.Devices, 1)
			assert.Equal(t, test.expected, inv.Devices[0].Name)
		})
	}
}

func TestAggregateNeverFabricatesName(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	inv := aggregator.Aggregate([]probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:1f.6", "beef", "cafe", "0200", ""),
		}},
	})

	require.Len(t, inv.Devices, 1)
	assert.Equal(t, "", inv.Devices[0].Name)
}

func TestAggregateAssignsTags(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	inv := aggregator.Aggregate([]probe.Report{
		{Bus: entity.PCIBus, Records: []entity.RawRecord{
			pciRecord("00:1f.6", "8086", "15d7", "0200", ""),
			pciRecord("00:02.0", "8086", "3ea0", "0300", ""),
			pciRecord("00:14.0", "8086", "9ded", "0c03", ""),
		}},
		{Bus: entity.CPUBus, Records: []entity.RawRecord{
			{Bus: entity.CPUBus, Address: "0", VendorID: "GenuineIntel", Flags: []string{"vmx", "aes"}},
		}},
	})

	require.Len(t, inv.Devices, 4)
	assert.Equal(t, []string{"network"}, inv.Devices[0].Tags)
	assert.Equal(t, []string{"gpu"}, inv.Devices[1].Tags)
	assert.Equal(t, []string{"usb-controller"}, inv.Devices[2].Tags)
	assert.Equal(t, []string{"virtualization", "aes"}, inv.Devices[3].Tags)
}

func TestAggregateMergesCPUFlags(t *testing.T) {
	aggregator := newTestAggregator(t, staticResolver{})

	inv := aggregator.Aggregate([]probe.Report{
		{Bus: entity.CPUBus, Records: []entity.RawRecord{
			{Bus: entity.CPUBus, Address: "0", VendorID: "GenuineIntel", Flags: []string{"fpu", "vmx"}},
			{Bus: entity.CPUBus, Address: "0", VendorID: "GenuineIntel", Flags: []string{"vmx", "aes"}},
		}},
	})

	require.Len(t, inv.Devices, 1)
	assert.Equal(t, []string{"fpu", "vmx", "aes"}, inv.Devices[0].Flags)
}
