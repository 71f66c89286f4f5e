package entities

import "strings"

// Slugify lowercases the name and collapses every run of non-alphanumerics
// into a single hyphen, trimming hyphens at both ends.
func Slugify(name string) string {
	var builder strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			builder.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			builder.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(builder.String(), "-")
}
