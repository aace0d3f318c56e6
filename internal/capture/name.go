package capture

import (
	"fmt"
	"strings"
)

// Sensor names the product line a capture is filed under.
type Sensor string

const (
	SensorVNIR Sensor = "vnir_netcdf"
	SensorSWIR Sensor = "swir_netcdf"
)

// UsesSoilMask reports whether conversion may take a soil mask.
func (s Sensor) UsesSoilMask() bool {
	return s == SensorVNIR
}

// Identity is what a dataset name says about a capture.
type Identity struct {
	Name      string
	Timestamp string
	Sensor    Sensor
}

// Date returns the YYYY-MM-DD prefix of the timestamp.
func (id Identity) Date() string {
	if len(id.Timestamp) < 10 {
		return id.Timestamp
	}
	return id.Timestamp[:10]
}

// ParseCaptureName splits "<SENSOR> - <timestamp>" dataset names.
func ParseCaptureName(name string) (Identity, error) {
	parts := strings.Split(name, " - ")
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return Identity{}, fmt.Errorf("capture name %q is not of the form \"<sensor> - <timestamp>\"", name)
	}
	sensor := SensorVNIR
	if strings.Contains(name, "SWIR") {
		sensor = SensorSWIR
	}
	return Identity{
		Name:      name,
		Timestamp: strings.TrimSpace(parts[1]),
		Sensor:    sensor,
	}, nil
}
