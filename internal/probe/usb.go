package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tupyy/hwdetect-ng/internal/entity"
)

const usbTool = "lsusb"

// Bus 001 Device 004: ID 0bda:0153 Realtek Semiconductor Corp. Card Reader
var usbLineRegex = regexp.MustCompile(`^Bus (\d{3}) Device (\d{3}): ID ([0-9a-fA-F]{4}):([0-9a-fA-F]{4})\s*(.*)$`)

// USBAdapter enumerates the USB bus through lsusb.
type USBAdapter struct {
	runner Runner
}

func NewUSBAdapter(runner Runner) *USBAdapter {
	return &USBAdapter{runner: runner}
}

func (a *USBAdapter) Bus() entity.Bus {
	return entity.USBBus
}

func (a *USBAdapter) Probe(ctx context.Context) (Report, error) {
	out, err := a.runner.Run(ctx, usbTool)
	if err != nil {
		return Report{Bus: entity.USBBus}, err
	}
	return parseUSB(out), nil
}

func parseUSB(out []byte) Report {
	report := Report{Bus: entity.USBBus}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := usbLineRegex.FindStringSubmatch(line)
		if m == nil {
			report.Malformed = append(report.Malformed, MalformedLine{Number: lineno, Raw: line})
			continue
		}
		report.Records = append(report.Records, entity.RawRecord{
			Bus:         entity.USBBus,
			Address:     fmt.Sprintf("%s:%s", m[1], m[2]),
			VendorID:    m[3],
			DeviceID:    m[4],
			Description: strings.TrimSpace(m[5]),
		})
	}
	return report
}
