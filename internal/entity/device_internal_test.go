package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testInventory() Inventory {
	return Inventory{
		Devices: []Device{
			{Key: DeviceKey{Bus: PCIBus, Address: "00:1f.6"}, VendorID: "8086", DeviceID: "15d7", Name: "Ethernet", Tags: []string{"network"}},
			{Key: DeviceKey{Bus: CPUBus, Address: "0"}, VendorID: "genuineintel", Flags: []string{"vmx"}},
		},
		Degraded: map[Bus]string{USBBus: "enumeration tool unavailable"},
	}
}

func TestInventoryHashStable(t *testing.T) {
	assert.Equal(t, testInventory().Hash(), testInventory().Hash())
}

func TestInventoryHashChangesWithContent(t *testing.T) {
	other := testInventory()
	other.Devices[0].Name = "renamed"
	assert.NotEqual(t, testInventory().Hash(), other.Hash())
}

func TestInventoryDevicesOn(t *testing.T) {
	inv := testInventory()

	assert.Len(t, inv.DevicesOn(PCIBus), 1)
	assert.Len(t, inv.DevicesOn(CPUBus), 1)
	assert.Empty(t, inv.DevicesOn(USBBus))
}

func TestInventoryIsDegraded(t *testing.T) {
	inv := testInventory()

	assert.True(t, inv.IsDegraded(USBBus))
	assert.False(t, inv.IsDegraded(PCIBus))
}

func TestBusRoundTrip(t *testing.T) {
	for _, b := range Buses {
		assert.Equal(t, b, BusFromString(b.String()))
	}
	assert.Equal(t, UnknownBus, BusFromString("isa"))
}
