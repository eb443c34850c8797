package utils

import "fmt"

const (
	B  = 1
	KB = 1024 * B
	MB = 1024 * KB
	GB = 1024 * MB
	TB = 1024 * GB
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats a byte count with binary units and one decimal place,
// e.g. 1536 -> "1.5 KB". TB is the largest unit.
func HumanSize(bytes int64) string {
	n := float64(bytes)
	i := 0
	for n >= 1024 && i < len(sizeUnits)-1 {
		n /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", n, sizeUnits[i])
}

// SumSizes adds up a slice of sizes
func SumSizes(sizes []int64) int64 {
	var total int64
	for _, size := range sizes {
		total += size
	}
	return total
}
