package course

import (
	"fmt"
	"strconv"
	"strings"

	"coursemarket/internal/models"

	"github.com/golang/glog"
)

// ParseSeconds reads a string-encoded number of seconds. Surrounding whitespace is ignored and
// parsing stops at the first non-digit, so "90s" reads as 90. ok is false when s holds no
// leading digits.
func ParseSeconds(s string) (seconds int64, ok bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	seconds, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// TotalDuration sums the durations of every subsection of every section, in seconds.
func TotalDuration(sections []*models.SectionDetails) int64 {
	var total int64
	for _, section := range sections {
		for _, sub := range section.SubSection {
			seconds, ok := ParseSeconds(sub.TimeDuration)
			if !ok {
				glog.Warningf("subsection %s has unreadable duration %q, counting it as 0", sub.ID, sub.TimeDuration)
				continue
			}
			total += seconds
		}
	}
	return total
}

// FormatDuration renders seconds as "1h 5m", "4m 10s" or "42s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
