package commuter

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders seconds as "N secs", "N mins", "H hr" or "H hr M mins".
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%d secs", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d mins", minutes)
	}
	hours, mins := minutes/60, minutes%60
	if mins > 0 {
		return fmt.Sprintf("%d hr %d mins", hours, mins)
	}
	return fmt.Sprintf("%d hr", hours)
}

// FormatDistance renders meters as "N m" below one kilometre, else "X.Y km".
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}

// formatCost renders a dollar amount with cents.
func formatCost(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// parseMinutes reads a FormatDuration string back into whole minutes.
// Second-granularity values count as zero.
func parseMinutes(s string) int {
	fields := strings.Fields(s)
	total := 0
	for i := 0; i+1 < len(fields); i += 2 {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return total
		}
		switch fields[i+1] {
		case "hr":
			total += n * 60
		case "mins":
			total += n
		}
	}
	return total
}

// parseCost reads "$12.50" style amounts. Unparseable values sort last.
func parseCost(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64)
	if err != nil {
		return 1e9
	}
	return v
}
