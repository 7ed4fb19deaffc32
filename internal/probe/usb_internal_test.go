package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tupyy/hwdetect-ng/internal/entity"
)

const usbSample = `Bus 002 Device 001: ID 1d6b:0003 Linux Foundation 3.0 root hub
Bus 001 Device 004: ID 0bda:0153 Realtek Semiconductor Corp. Card Reader
Bus 001 Device 003: ID 8087:0a2b
Bus 001 broken line
Bus 001 Device 001: ID 1d6b:0002 Linux Foundation 2.0 root hub
`

func TestParseUSB(t *testing.T) {
	report := parseUSB([]byte(usbSample))

	assert.Len(t, report.Records, 4)
	assert.Len(t, report.Malformed, 1)
	assert.Equal(t, 4, report.Malformed[0].Number)
	assert.Equal(t, "Bus 001 broken line", report.Malformed[0].Raw)

	reader := report.Records[1]
	assert.Equal(t, entity.USBBus, reader.Bus)
	assert.Equal(t, "001:004", reader.Address)
	assert.Equal(t, "0bda", reader.VendorID)
	assert.Equal(t, "0153", reader.DeviceID)
	assert.Equal(t, "Realtek Semiconductor Corp. Card Reader", reader.Description)

	// description is optional
	assert.Equal(t, "", report.Records[2].Description)
}
