package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tupyy/hwdetect-ng/internal/entity"
)

const cpuSample = `processor	: 0
vendor_id	: GenuineIntel
cpu family	: 6
model		: 142
model name	: Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz
stepping	: 10
flags		: fpu vme aes vmx hypervisor
power management:

processor	: 1
vendor_id	: GenuineIntel
model		: 142
model name	: Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz
flags		: fpu vme aes vmx
`

func TestParseCPU(t *testing.T) {
	report := parseCPU([]byte(cpuSample))

	assert.Len(t, report.Records, 2)
	assert.Empty(t, report.Malformed)

	core := report.Records[0]
	assert.Equal(t, entity.CPUBus, core.Bus)
	assert.Equal(t, "0", core.Address)
	assert.Equal(t, "GenuineIntel", core.VendorID)
	assert.Equal(t, "142", core.DeviceID)
	assert.Equal(t, "Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz", core.Description)
	assert.Equal(t, []string{"fpu", "vme", "aes", "vmx", "hypervisor"}, core.Flags)

	assert.Equal(t, "1", report.Records[1].Address)
}

func TestParseCPUMalformed(t *testing.T) {
	sample := "processor\t: 0\nvendor_id\t: GenuineIntel\nno separator here\n\nprocessor\t: 1\n"
	report := parseCPU([]byte(sample))

	assert.Len(t, report.Records, 2)
	assert.Len(t, report.Malformed, 1)
	assert.Equal(t, 3, report.Malformed[0].Number)
	assert.Equal(t, "no separator here", report.Malformed[0].Raw)
}

func TestParseCPUIgnoresKeysOutsideBlocks(t *testing.T) {
	// some architectures print global keys before the first processor block
	sample := "Hardware\t: BCM2835\n\nprocessor\t: 0\nvendor_id\t: ARM\n"
	report := parseCPU([]byte(sample))

	assert.Len(t, report.Records, 1)
	assert.Empty(t, report.Malformed)
	assert.Equal(t, "ARM", report.Records[0].VendorID)
}
