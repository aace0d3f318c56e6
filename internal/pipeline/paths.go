package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hyperspectral/internal/capture"
)

// SoilMaskSensor is the product line holding VNIR soil masks.
const SoilMaskSensor = "vnir_soil_masks"

// SensorPaths are the output locations for one capture.
type SensorPaths struct {
	Dir      string
	Output   string
	Indices  string
	Traits   string
	SoilMask string
}

// PathsFor lays out <root>/<sensor>/<date>/<timestamp>/<sensor>_L1_<site>_<timestamp>.nc
// and its companions.
func PathsFor(root, site string, id capture.Identity) SensorPaths {
	dir := sensorDir(root, string(id.Sensor), id)
	base := productBase(string(id.Sensor), site, id.Timestamp)
	paths := SensorPaths{
		Dir:     dir,
		Output:  filepath.Join(dir, base+".nc"),
		Indices: filepath.Join(dir, base+"_ind.nc"),
		Traits:  filepath.Join(dir, base+"_ind.csv"),
	}
	if id.Sensor.UsesSoilMask() {
		maskDir := sensorDir(root, SoilMaskSensor, id)
		paths.SoilMask = filepath.Join(maskDir, productBase(SoilMaskSensor, site, id.Timestamp)+"_soil_mask.nc")
	}
	return paths
}

func sensorDir(root, sensor string, id capture.Identity) string {
	return filepath.Join(root, sensor, id.Date(), id.Timestamp)
}

func productBase(sensor, site, timestamp string) string {
	return fmt.Sprintf("%s_L1_%s_%s", sensor, site, timestamp)
}

// DisplayName is the collection title used for a sensor's products, e.g.
// "VNIR Hyperspectral NetCDFs".
func DisplayName(sensor capture.Sensor) string {
	short := strings.TrimSuffix(string(sensor), "_netcdf")
	return cases.Upper(language.Und).String(short) + " Hyperspectral NetCDFs"
}

// Hierarchy returns the collection chain and leaf dataset name a capture's
// products are filed under. Every level is prefixed with the display name
// and carries the full date so far ("<display> - 2017", "<display> -
// 2017-04", "<display> - 2017-04-27") because collections are looked up by
// title alone.
func Hierarchy(id capture.Identity) []string {
	display := DisplayName(id.Sensor)
	names := []string{display}
	parts := strings.SplitN(id.Date(), "-", 3)
	if len(parts) == 3 {
		for i := range parts {
			names = append(names, display+" - "+strings.Join(parts[:i+1], "-"))
		}
	}
	return append(names, display+" - "+id.Timestamp)
}
