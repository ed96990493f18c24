package geocsv

import (
	"math"
	"strconv"
)

// coordDecimals is the number of decimals of coordinates and float values.
const coordDecimals = 6

// AppendCoord appends a coordinate with six decimals.
func AppendCoord(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', coordDecimals, 64)
}

// AppendValue appends a raster value: six decimals for float types, rounded
// to an integer otherwise.
func AppendValue(dst []byte, v float64, t PixelType) []byte {
	if t.IsFloat() {
		return strconv.AppendFloat(dst, v, 'f', coordDecimals, 64)
	}
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.AppendFloat(dst, r, 'f', 0, 64)
}

// FormatValue is AppendValue into a new string.
func FormatValue(v float64, t PixelType) string {
	return string(AppendValue(nil, v, t))
}

// FormatCoord is AppendCoord into a new string.
func FormatCoord(v float64) string {
	return string(AppendCoord(nil, v))
}
