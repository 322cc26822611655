package util

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Typographic characters common in pasted show notes, mapped to ASCII so
// they separate words instead of gluing them together.
var charReplacementMap = map[string]string{
	"‘": "'", "’": "'", "“": "\"", "”": "\"",
	"–": "-", "—": "--", "…": "...", "\u00a0": " ",
	"\u0096": "-", "\u0097": "--", "\u0091": "'", "\u0092": "'",
	"\u0093": "\"", "\u0094": "\"", "•": "*",
}

// IsLikelyBinary reports whether data looks like binary content (contains NUL
// bytes within the first few hundred bytes).
func IsLikelyBinary(data []byte) bool {
	if len(data) > maxBinaryCheckBytes {
		data = data[:maxBinaryCheckBytes]
	}
	return bytes.Contains(data, []byte{0})
}

// CleanText strips a BOM, repairs invalid UTF-8 and normalises typographic
// punctuation. src names the input for log messages.
func CleanText(content []byte, src string) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	if !utf8.Valid(content) {
		log.Warnf("%s contains invalid UTF-8, replacing invalid chars", src)
		content = bytes.ToValidUTF8(content, []byte(string(utf8.RuneError)))
	}

	str := string(content)
	for bad, good := range charReplacementMap {
		str = strings.ReplaceAll(str, bad, good)
	}

	if !utf8.ValidString(str) {
		return "", fmt.Errorf("invalid UTF-8 after replacements: %s", src)
	}
	return str, nil
}
