// Command hyperspectral converts raw hyperspectral captures into NetCDF
// products, reports their NDVI705 traits, and validates produced containers.
package main
