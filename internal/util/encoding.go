package util

import (
	"encoding/base64"

	"golang.org/x/text/unicode/norm"
)

// HasAmbiguousEncoding reports whether s contains characters that Unicode
// can also spell with different bytes (precomposed vs combining accents,
// compatibility forms such as ligatures). Such text may be typed as other
// bytes on another keyboard or OS.
func HasAmbiguousEncoding(s string) bool {
	return norm.NFC.String(s) != norm.NFKD.String(s)
}

func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func Base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
