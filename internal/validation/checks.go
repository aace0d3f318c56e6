package validation

import (
	"fmt"
	"strings"

	"hyperspectral/internal/container"
)

// Check names in report order.
const (
	CheckRootDimensionCount = "root_dimension_count"
	CheckYMatchesTime       = "y_matches_time"
	CheckWavelengthDim      = "wavelength_dimension"
	CheckWavelengthLength   = "wavelength_length"
	CheckWavelengthRange    = "wavelength_range"
	CheckHistoryRecorded    = "history_recorded"
	CheckFrametimeCalendar  = "frametime_calendar"
	CheckFrametimeUnits     = "frametime_units"
	CheckFrametimeValue     = "frametime_value"
	CheckXAttributes        = "x_attributes"
	CheckYAttributes        = "y_attributes"
	CheckReflectanceCeiling = "reflectance_ceiling"
	CheckSolarZenithRange   = "solar_zenith_range"
	CheckExposureCeiling    = "exposure_ceiling"
)

// Container schema names.
const (
	dimX          = "x"
	dimY          = "y"
	dimTime       = "time"
	dimWavelength = "wavelength"

	varWavelength  = "wavelength"
	varFrametime   = "frametime"
	varX           = "x"
	varY           = "y"
	varReflectance = "rfl_img"
	varExposure    = "xps_img"
	varSolarZenith = "solar_zenith_angle"

	attrHistory = "history"
	// The product spells the calendar attribute this way.
	attrCalendar = "calender"
	attrUnits    = "units"

	calendarGregorian = "gregorian"
	frametimeUnits    = "days since 1970-01-01 00:00:00"
	frametimeFloor    = 16000.0

	// Wavelengths are stored in meters.
	wavelengthFloor   = 3e-7
	wavelengthCeiling = 1e-6

	zenithMin = 0.0
	zenithMax = 90.0
)

// BandCounts are the wavelength cardinalities produced by past instrument
// revisions.
var BandCounts = []int{272, 273, 275, 939, 955}

// Required attributes per georeferencing variable.
var (
	xAttributes = []string{"units", "reference_point", "long_name", "algorithm"}
	yAttributes = []string{"units", "reference_point", "long_name", "algorithm"}
)

// Checks returns the suite in report order.
func Checks() []Check {
	return []Check{
		{
			Name:            CheckRootDimensionCount,
			Description:     "root dimension count matches the expected constant",
			ExpectedFailure: true,
			Run:             checkRootDimensionCount,
		},
		{Name: CheckYMatchesTime, Description: "y and time dimensions have the same cardinality", Run: checkYMatchesTime},
		{Name: CheckWavelengthDim, Description: "wavelength dimension is a known band count", Run: checkWavelengthDimension},
		{Name: CheckWavelengthLength, Description: "wavelength variable length is a known band count", Run: checkWavelengthLength},
		{Name: CheckWavelengthRange, Description: "first wavelength lies between 300 nm and 1000 nm", Run: checkWavelengthRange},
		{Name: CheckHistoryRecorded, Description: "root history attribute is recorded", Run: checkHistory},
		{Name: CheckFrametimeCalendar, Description: "frametime declares the gregorian calendar", Run: checkFrametimeCalendar},
		{Name: CheckFrametimeUnits, Description: "frametime is in days since the Unix epoch", Run: checkFrametimeUnits},
		{Name: CheckFrametimeValue, Description: "first frametime exceeds 16000 days", Run: checkFrametimeValue},
		{Name: CheckXAttributes, Description: "x carries the georeferencing attributes", Run: requireAttributes(varX, xAttributes)},
		{Name: CheckYAttributes, Description: "y carries the georeferencing attributes", Run: requireAttributes(varY, yAttributes)},
		{
			Name:            CheckReflectanceCeiling,
			Description:     "no reflectance exceeds the maximum plant reflectance",
			ExpectedFailure: true,
			Run:             checkReflectanceCeiling,
		},
		{Name: CheckSolarZenithRange, Description: "solar zenith angles lie within [0, 90] degrees", Run: checkSolarZenith},
		{
			Name:            CheckExposureCeiling,
			Description:     "no exposure exceeds the saturated exposure",
			ExpectedFailure: true,
			Run:             checkExposureCeiling,
		},
	}
}

// Lookup returns the named check.
func Lookup(name string) (Check, bool) {
	for _, check := range Checks() {
		if check.Name == name {
			return check, true
		}
	}
	return Check{}, false
}

func checkRootDimensionCount(f *container.File, env *Env) error {
	if got := len(f.Dimensions()); got != env.Config.ExpectedDimensions {
		return failf("root has %d dimensions, expected %d", got, env.Config.ExpectedDimensions)
	}
	return nil
}

func checkYMatchesTime(f *container.File, _ *Env) error {
	y, err := dimension(f, dimY)
	if err != nil {
		return err
	}
	t, err := dimension(f, dimTime)
	if err != nil {
		return err
	}
	if y != t {
		return failf("y dimension is %d but time dimension is %d", y, t)
	}
	return nil
}

func checkWavelengthDimension(f *container.File, _ *Env) error {
	n, err := dimension(f, dimWavelength)
	if err != nil {
		return err
	}
	if !knownBandCount(n) {
		return failf("wavelength dimension %d is not one of %v", n, BandCounts)
	}
	return nil
}

func checkWavelengthLength(f *container.File, _ *Env) error {
	v, err := f.Variable(varWavelength)
	if err != nil {
		return err
	}
	n := v.Size()
	if len(v.Lengths) > 0 {
		n = v.Lengths[0]
	}
	if !knownBandCount(n) {
		return failf("wavelength variable has %d samples, expected one of %v", n, BandCounts)
	}
	return nil
}

func checkWavelengthRange(f *container.File, _ *Env) error {
	v, err := f.Variable(varWavelength)
	if err != nil {
		return err
	}
	first, err := v.First()
	if err != nil {
		return err
	}
	if !(first > wavelengthFloor && first < wavelengthCeiling) {
		return failf("first wavelength %g m is outside (%g, %g)", first, wavelengthFloor, wavelengthCeiling)
	}
	return nil
}

func checkHistory(f *container.File, env *Env) error {
	history, ok := f.StringAttribute(attrHistory)
	if !ok {
		return failf("root has no %s attribute", attrHistory)
	}
	if strings.TrimSpace(history) == "" {
		return failf("root %s attribute is empty", attrHistory)
	}
	if env.history != nil && !env.history.MatchString(history) {
		return failf("history %q does not match %s", history, env.history)
	}
	return nil
}

func checkFrametimeCalendar(f *container.File, _ *Env) error {
	return requireTextAttribute(f, varFrametime, attrCalendar, calendarGregorian)
}

func checkFrametimeUnits(f *container.File, _ *Env) error {
	return requireTextAttribute(f, varFrametime, attrUnits, frametimeUnits)
}

func checkFrametimeValue(f *container.File, _ *Env) error {
	v, err := f.Variable(varFrametime)
	if err != nil {
		return err
	}
	first, err := v.First()
	if err != nil {
		return err
	}
	if !(first > frametimeFloor) {
		return failf("first frametime %g is not above %g", first, frametimeFloor)
	}
	return nil
}

func requireAttributes(name string, attrs []string) func(*container.File, *Env) error {
	return func(f *container.File, _ *Env) error {
		v, err := f.Variable(name)
		if err != nil {
			return err
		}
		if missing := v.MissingAttributes(attrs...); len(missing) > 0 {
			return failf("%s is missing attributes %s", name, strings.Join(missing, ", "))
		}
		return nil
	}
}

func checkReflectanceCeiling(f *container.File, env *Env) error {
	return requireCeiling(f, varReflectance, env.Config.MaxPlantReflectance, "maximum plant reflectance")
}

func checkExposureCeiling(f *container.File, env *Env) error {
	return requireCeiling(f, varExposure, env.Config.SaturatedExposure, "saturated exposure")
}

func checkSolarZenith(f *container.File, env *Env) error {
	v, err := f.Variable(varSolarZenith)
	if err != nil {
		return err
	}
	lo, err := v.Min()
	if err != nil {
		return err
	}
	hi, err := v.Max()
	if err != nil {
		return err
	}
	over, under := hi > zenithMax, lo < zenithMin
	failed := over || under
	if env.Config.LegacyZenithCheck {
		failed = over && under
	}
	if failed {
		return failf("solar zenith angles span [%g, %g], outside [%g, %g]", lo, hi, zenithMin, zenithMax)
	}
	return nil
}

func requireCeiling(f *container.File, name string, ceiling float64, label string) error {
	v, err := f.Variable(name)
	if err != nil {
		return err
	}
	var offending float64
	exceeded := false
	err = v.Scan(func(value float64) bool {
		if value > ceiling {
			offending, exceeded = value, true
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if exceeded {
		return failf("%s has value %g above the %s %g", name, offending, label, ceiling)
	}
	return nil
}

func requireTextAttribute(f *container.File, variable, attr, want string) error {
	v, err := f.Variable(variable)
	if err != nil {
		return err
	}
	got, ok := v.StringAttribute(attr)
	if !ok {
		return failf("%s has no %s attribute", variable, attr)
	}
	if got != want {
		return failf("%s %s is %q, expected %q", variable, attr, got, want)
	}
	return nil
}

func dimension(f *container.File, name string) (int, error) {
	n, ok := f.DimLen(name)
	if !ok {
		return 0, fmt.Errorf("dimension %s not found", name)
	}
	return n, nil
}

func knownBandCount(n int) bool {
	for _, count := range BandCounts {
		if n == count {
			return true
		}
	}
	return false
}
