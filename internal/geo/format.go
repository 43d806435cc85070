package geo

import (
	"fmt"
	"math"
)

// FormatDistance renders meters for display: "350 m", "1.2 km", "12 km".
// Non-finite input formats as "Unknown".
func FormatDistance(meters float64) string {
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return "Unknown"
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int64(math.Round(meters)))
	}

	km := meters / 1000
	if km < 10 {
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%.0f km", km)
}
