// Package geocsv flattens a folder of co-registered single-band rasters into
// one table with a row per pixel. Each row carries the pixel's longitude and
// latitude followed by one value per raster; a pixel that holds no-data in
// any raster is left out.
//
// Rasters are streamed in horizontal strips so memory stays proportional to
// the strip height, not the raster height. Raster decoding and coordinate
// reference systems are consumed through the Opener, Raster and SpatialRef
// interfaces; package gdalraster provides GDAL-backed implementations.
package geocsv

import (
	"errors"
)

// Common errors returned by this package.
var (
	ErrNoInputFound        = errors.New("geocsv: no input rasters found")
	ErrRasterOpen          = errors.New("geocsv: cannot open raster")
	ErrRasterRead          = errors.New("geocsv: cannot read raster strip")
	ErrCoordinateTransform = errors.New("geocsv: coordinate transform failed")
	ErrOutputWrite         = errors.New("geocsv: cannot write output")
	ErrGridMismatch        = errors.New("geocsv: raster grid does not match")
	ErrCanceled            = errors.New("geocsv: conversion canceled")
	ErrInvalidConfig       = errors.New("geocsv: invalid configuration")
)

// CRS describes the coordinate reference system written into output formats
// that record one.
type CRS struct {
	Code        int    // EPSG code (e.g., 4326 for WGS84)
	Name        string // CRS name
	Description string // CRS description
}

// WGS84 returns the standard WGS84 CRS (EPSG:4326). Output coordinates are
// always expressed in it.
func WGS84() *CRS {
	return &CRS{
		Code: 4326,
		Name: "WGS 84",
	}
}

// Summary reports what a finished conversion produced.
type Summary struct {
	Output     string // Path of the written file
	Rasters    int    // Number of input rasters
	Strips     int    // Number of strips streamed
	Rows       int    // Data rows written
	Suppressed int    // Pixels dropped because a raster held no-data
}
