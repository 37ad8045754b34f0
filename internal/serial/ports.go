package serial

import (
	"go.bug.st/serial/enumerator"
)

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// listDetailed is replaced in tests.
var listDetailed = enumerator.GetDetailedPortsList

// ListPorts returns available serial ports.
func ListPorts() ([]PortInfo, error) {
	ports, err := listDetailed()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}
	return result, nil
}

// FindPort looks up a port by name, e.g. the port of a discovered board.
func FindPort(name string) (PortInfo, bool, error) {
	ports, err := ListPorts()
	if err != nil {
		return PortInfo{}, false, err
	}
	for _, p := range ports {
		if p.Name == name {
			return p, true, nil
		}
	}
	return PortInfo{}, false, nil
}

// USBID renders "VID:PID" for USB ports and "" otherwise.
func (p PortInfo) USBID() string {
	if !p.IsUSB || (p.VID == "" && p.PID == "") {
		return ""
	}
	return p.VID + ":" + p.PID
}
