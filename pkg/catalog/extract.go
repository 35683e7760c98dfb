package catalog

import (
	"strconv"
	"strings"
	"time"
)

// ExtractYear returns the leading four-digit year of a description such as
// "2024 Century 12 Series Steel Car Carrier, Hino L-6, #19874". Descriptions
// without a leading year yield now's year.
func ExtractYear(description string, now time.Time) int {
	if len(description) >= 4 {
		head := description[:4]
		if isDigits(head) {
			year, err := strconv.Atoi(head)
			if err == nil {
				return year
			}
		}
	}
	return now.Year()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Location returns the trimmed last comma-delimited token of owner, which by
// convention is the state: "Metro Towing Group, Dallas, TX" yields "TX".
func Location(owner string) string {
	i := strings.LastIndexByte(owner, ',')
	return strings.TrimSpace(owner[i+1:])
}

// CompanyName returns the first comma-delimited token of owner.
func CompanyName(owner string) string {
	name, _, _ := strings.Cut(owner, ",")
	return strings.TrimSpace(name)
}
