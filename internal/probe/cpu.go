package probe

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/entity"
)

var cpuTool = []string{"cat", "/proc/cpuinfo"}

// CPUAdapter identifies the logical CPU topology. The identification
// probe emits one `key : value` block per logical core, blocks separated
// by blank lines.
type CPUAdapter struct {
	runner Runner
}

func NewCPUAdapter(runner Runner) *CPUAdapter {
	return &CPUAdapter{runner: runner}
}

func (a *CPUAdapter) Bus() entity.Bus {
	return entity.CPUBus
}

func (a *CPUAdapter) Probe(ctx context.Context) (Report, error) {
	out, err := a.runner.Run(ctx, cpuTool[0], cpuTool[1:]...)
	if err != nil {
		return Report{Bus: entity.CPUBus}, err
	}
	return parseCPU(out), nil
}

// parseCPU parses cpuinfo-style output. A block starts at a `processor`
// key; `vendor_id`, `model`, `model name` and `flags` are extracted,
// unknown keys are ignored. A non-blank line without a key separator is
// recorded as malformed.
func parseCPU(out []byte) Report {
	report := Report{Bus: entity.CPUBus}

	var current *entity.RawRecord
	flush := func() {
		if current != nil {
			report.Records = append(report.Records, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	// flags lines run long on wide machines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := splitCPULine(line)
		if !ok {
			report.Malformed = append(report.Malformed, MalformedLine{Number: lineno, Raw: strings.TrimSpace(line)})
			continue
		}
		switch key {
		case "processor":
			flush()
			current = &entity.RawRecord{Bus: entity.CPUBus, Address: value}
		case "vendor_id":
			if current != nil {
				current.VendorID = value
			}
		case "model":
			if current != nil {
				current.DeviceID = value
			}
		case "model name":
			if current != nil {
				current.Description = value
			}
		case "flags", "Features":
			if current != nil {
				current.Flags = strings.Fields(value)
			}
		}
	}
	flush()
	return report
}

func splitCPULine(line string) (key, value string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}
