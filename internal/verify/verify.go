// Package verify confirms a conversion produced its container and pulls the
// derived index value reported to the trait database.
package verify

import (
	"fmt"

	"hyperspectral/internal/container"
	"hyperspectral/internal/fileutil"
	"hyperspectral/internal/services"
)

// Output returns the size of the produced container, or ErrOutputNotProduced
// when it is missing or empty.
func Output(path string) (int64, error) {
	size, err := fileutil.NonEmptyFile(path)
	if err != nil {
		return 0, services.Wrap(services.ErrOutputNotProduced, "verify", "check output", path, err)
	}
	return size, nil
}

// ExtractIndex opens the derived-indices container and returns the first
// element of the single variable, in any group, whose standard_name is
// standardName. Scalar variables yield their only value.
func ExtractIndex(path, standardName string) (float64, error) {
	f, err := container.Open(path)
	if err != nil {
		return 0, services.Wrap(services.ErrTraitExtraction, "verify", "open indices", path, err)
	}
	defer f.Close()

	matches, err := f.FindVariables("standard_name", standardName)
	if err != nil {
		return 0, services.Wrap(services.ErrTraitExtraction, "verify", "find index", path, err)
	}
	switch len(matches) {
	case 0:
		return 0, services.Wrap(services.ErrTraitExtraction, "verify", "find index",
			fmt.Sprintf("no variable with standard_name %q in %s", standardName, path), nil)
	case 1:
	default:
		return 0, services.Wrap(services.ErrTraitExtraction, "verify", "find index",
			fmt.Sprintf("%d variables with standard_name %q in %s", len(matches), standardName, path), nil)
	}

	value, err := matches[0].First()
	if err != nil {
		return 0, services.Wrap(services.ErrTraitExtraction, "verify", "read index", matches[0].Name, err)
	}
	return value, nil
}
