package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexIDPattern  = regexp.MustCompile(`^[a-f0-9]{32}$`)
	tailIDPattern = regexp.MustCompile(`([a-f0-9]{32})$`)
	uuidPattern   = regexp.MustCompile(`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`)
)

// CollectionIDFromURL extracts the opaque collection identifier from a
// source collection URL or a raw ID string.
//
// Supported formats:
//   - https://host/title-286c479a8fc21c807d134a19e9ae7065?v=...
//   - 286c479a8fc21c807d134a19e9ae7065 (32-char hex)
//   - 286c479a-8fc2-1c80-7d13-4a19e9ae7065 (UUID with dashes)
func CollectionIDFromURL(urlOrID string) (string, error) {
	if strings.Contains(urlOrID, "://") {
		// Strip query parameters, then take the trailing hex ID of the
		// last path segment
		clean, _, _ := strings.Cut(urlOrID, "?")
		if m := tailIDPattern.FindString(strings.ReplaceAll(clean, "-", "")); m != "" {
			return m, nil
		}
		if m := uuidPattern.FindString(clean); m != "" {
			return strings.ReplaceAll(m, "-", ""), nil
		}
		return "", fmt.Errorf("%w: no collection ID in URL %q", ErrInvalidInput, urlOrID)
	}

	clean := strings.ReplaceAll(urlOrID, "-", "")
	if hexIDPattern.MatchString(clean) {
		return clean, nil
	}
	return "", fmt.Errorf("%w: invalid collection URL or ID %q", ErrInvalidInput, urlOrID)
}
