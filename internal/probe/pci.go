package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"go.uber.org/zap"
)

const pciTool = "lspci"

var (
	// 00:1f.6 or 0000:00:1f.6
	pciAddrRegex = regexp.MustCompile(`^([0-9a-fA-F]{4}:)?[0-9a-fA-F]{2}:[0-9a-fA-F]{2}\.[0-7]$`)
	pciIDRegex   = regexp.MustCompile(`^[0-9a-fA-F]{4}:[0-9a-fA-F]{4}$`)
	pciRevRegex  = regexp.MustCompile(`\(rev [0-9a-fA-F]+\)`)
)

// PCIAdapter enumerates the PCI bus through lspci. When the tool is
// unavailable and the sysfs fallback is enabled, the bus is walked
// through sysfs instead.
type PCIAdapter struct {
	runner        Runner
	sysfsFallback bool
}

func NewPCIAdapter(runner Runner, sysfsFallback bool) *PCIAdapter {
	return &PCIAdapter{runner: runner, sysfsFallback: sysfsFallback}
}

func (a *PCIAdapter) Bus() entity.Bus {
	return entity.PCIBus
}

func (a *PCIAdapter) Probe(ctx context.Context) (Report, error) {
	out, err := a.runner.Run(ctx, pciTool, "-n")
	if err != nil {
		if a.sysfsFallback && errors.Is(err, ErrToolUnavailable) {
			zap.S().Infow("pci tool unavailable, falling back to sysfs", "tool", pciTool)
			return a.probeSysfs()
		}
		return Report{Bus: entity.PCIBus}, err
	}
	return parsePCI(out), nil
}

// parsePCI parses `lspci -n` output, one device per line:
//
//	00:1f.6 0200: 8086:15d7 (rev 21)
//
// The class token's trailing colon and the revision suffix are optional.
// Anything left after the vendor:device pair is kept as the description;
// unknown trailing fields are ignored rather than rejected.
func parsePCI(out []byte) Report {
	report := Report{Bus: entity.PCIBus}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, ok := parsePCILine(line)
		if !ok {
			report.Malformed = append(report.Malformed, MalformedLine{Number: lineno, Raw: line})
			continue
		}
		report.Records = append(report.Records, record)
	}
	return report
}

func parsePCILine(line string) (entity.RawRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return entity.RawRecord{}, false
	}
	if !pciAddrRegex.MatchString(fields[0]) {
		return entity.RawRecord{}, false
	}
	class := strings.TrimSuffix(fields[1], ":")
	if !isHex(class) {
		return entity.RawRecord{}, false
	}
	if !pciIDRegex.MatchString(fields[2]) {
		return entity.RawRecord{}, false
	}
	ids := strings.SplitN(fields[2], ":", 2)

	description := strings.Join(fields[3:], " ")
	description = strings.TrimSpace(pciRevRegex.ReplaceAllString(description, ""))

	return entity.RawRecord{
		Bus:         entity.PCIBus,
		Address:     fields[0],
		VendorID:    ids[0],
		DeviceID:    ids[1],
		Class:       class,
		Description: description,
	}, true
}

func (a *PCIAdapter) probeSysfs() (Report, error) {
	info, err := ghw.PCI()
	if err != nil {
		return Report{Bus: entity.PCIBus}, fmt.Errorf("sysfs pci enumeration: %w", err)
	}

	report := Report{Bus: entity.PCIBus}
	for _, dev := range info.Devices {
		record := entity.RawRecord{Bus: entity.PCIBus, Address: dev.Address}
		if dev.Vendor != nil {
			record.VendorID = dev.Vendor.ID
		}
		if dev.Product != nil {
			record.DeviceID = dev.Product.ID
			record.Description = dev.Product.Name
		}
		if dev.Class != nil {
			record.Class = dev.Class.ID
			if dev.Subclass != nil {
				record.Class += dev.Subclass.ID
			}
		}
		report.Records = append(report.Records, record)
	}
	return report, nil
}

func isHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
