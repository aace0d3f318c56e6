// Package container reads the NetCDF products written for each capture and
// writes the small classic-format files the tests use as fixtures.
//
// Products are opened with github.com/batchatco/go-native-netcdf, which reads
// both the classic CDF encodings and the HDF5-based NetCDF-4 format. A File
// is the root of a tree of groups; each Group exposes its dimensions,
// variables, attributes and subgroups. Numeric variables are read in chunks
// along their slowest-varying dimension and surfaced as float64.
package container
