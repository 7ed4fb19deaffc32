package probe

import (
	"context"

	"github.com/tupyy/hwdetect-ng/internal/entity"
)

// Report is the outcome of one probe: every record that parsed plus
// every line that did not. Parsing is total.
type Report struct {
	Bus       entity.Bus
	Records   []entity.RawRecord
	Malformed []MalformedLine
}

// Adapter probes a single bus. Adapters share no state and may run
// concurrently.
type Adapter interface {
	Bus() entity.Bus
	Probe(ctx context.Context) (Report, error)
}

// Adapters returns one adapter per enabled bus, in the fixed bus order.
func Adapters(runner Runner, buses []entity.Bus, sysfsFallback bool) []Adapter {
	var out []Adapter
	for _, b := range entity.Buses {
		if !b.OneOf(buses...) {
			continue
		}
		switch b {
		case entity.PCIBus:
			out = append(out, NewPCIAdapter(runner, sysfsFallback))
		case entity.USBBus:
			out = append(out, NewUSBAdapter(runner))
		case entity.CPUBus:
			out = append(out, NewCPUAdapter(runner))
		}
	}
	return out
}
