package timefmt

import "fmt"

// Format renders a millisecond offset as a subtitle-style timestamp
// "HH:MM:SS,mmm". Hours are not wrapped, so offsets past one hour keep
// counting up ("25:00:00,000" is valid output). Fractions of a
// millisecond never reach this function; the division below floors.
func Format(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
