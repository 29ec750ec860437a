// Package units provides binary size unit multipliers (1024-based).
package units

// Binary size multipliers.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// BytesToGiB converts a byte count to fractional gibibytes.
func BytesToGiB(b int64) float64 {
	return float64(b) / float64(GiB)
}

// GiBToBytes converts fractional gibibytes to a byte count.
func GiBToBytes(g float64) int64 {
	return int64(g * float64(GiB))
}
