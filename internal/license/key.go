package license

import "strings"

// keySegments is the minimum number of dash-separated segments in a full
// license key (PREFIX-XXXX-XXXX-XXXX-XXXX).
const keySegments = 5

// ExtractPrefix returns the lookup prefix of a raw license key: the first
// dash-separated segment. The key must have at least five segments; anything
// shorter, including empty input, is a format failure and returns ok=false.
// Segment contents are not validated here.
func ExtractPrefix(rawKey string) (string, bool) {
	if rawKey == "" {
		return "", false
	}

	parts := strings.Split(rawKey, "-")
	if len(parts) < keySegments {
		return "", false
	}
	return parts[0], true
}
