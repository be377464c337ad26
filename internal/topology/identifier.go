package topology

import (
	"os"
	"strings"
)

const (
	socModelPath        = "/sys/devices/soc0/machine"
	socManufacturerPath = "/sys/devices/soc0/family"
	deviceCodenamePath  = "/proc/device-tree/model"
)

// SysfsIdentifier reads hardware identification strings from the soc0 sysfs
// node. Missing nodes read as empty strings, which simply never match a
// known layout.
type SysfsIdentifier struct {
	modelPath        string
	manufacturerPath string
	codenamePath     string
}

func NewSysfsIdentifier() *SysfsIdentifier {
	return &SysfsIdentifier{
		modelPath:        socModelPath,
		manufacturerPath: socManufacturerPath,
		codenamePath:     deviceCodenamePath,
	}
}

func (i *SysfsIdentifier) SoCModel() string {
	return readTrimmed(i.modelPath)
}

func (i *SysfsIdentifier) SoCManufacturer() string {
	return readTrimmed(i.manufacturerPath)
}

func (i *SysfsIdentifier) DeviceCodename() string {
	return readTrimmed(i.codenamePath)
}

func readTrimmed(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(strings.TrimRight(string(raw), "\x00"))
}
