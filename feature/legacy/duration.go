package legacy

import (
	"strconv"
	"strings"
)

// ParseDuration converts "H:MM:SS", "MM:SS" or a plain number of seconds into
// total seconds. Anything else yields 0.
func ParseDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		// Minutes and seconds after the first field must stay below 60.
		if i > 0 && n >= 60 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
