package core

import (
	"strings"

	"github.com/emersion/go-message"
)

// AuthResultsHeader extracts the Authentication-Results value from a raw
// header block. Anything unreadable yields an empty value, which the
// message constructor treats as failed validation.
func AuthResultsHeader(rawHeader string) string {
	if rawHeader == "" {
		return ""
	}
	if !strings.HasSuffix(rawHeader, "\r\n\r\n") && !strings.HasSuffix(rawHeader, "\n\n") {
		rawHeader += "\r\n\r\n"
	}
	entity, err := message.Read(strings.NewReader(rawHeader))
	if err != nil && !message.IsUnknownCharset(err) {
		return ""
	}
	if entity == nil {
		return ""
	}
	return entity.Header.Get("Authentication-Results")
}
