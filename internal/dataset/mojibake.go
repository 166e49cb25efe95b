package dataset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeMarkers are the tell-tale sequences left behind when UTF-8 bytes
// were decoded as Latin-1 ("SÃ£o Paulo", "â€œquotedâ€").
var mojibakeMarkers = []string{"Ã", "â€", "Â"}

// FixMojibake repairs text that was decoded with the wrong charset by
// re-encoding it as Latin-1 and reinterpreting the bytes as UTF-8. Text
// without mojibake markers, and text the repair cannot round-trip, is
// returned unchanged.
func FixMojibake(text string) string {
	suspicious := false
	for _, marker := range mojibakeMarkers {
		if strings.Contains(text, marker) {
			suspicious = true
			break
		}
	}
	if !suspicious {
		return text
	}

	encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		// Contains runes outside Latin-1, so it was not mojibake after all.
		return text
	}
	if !utf8.ValidString(encoded) {
		return text
	}
	return encoded
}
