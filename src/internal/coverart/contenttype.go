package coverart

import (
	"bytes"
	"time"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
var jpegMagic = []byte{0xff, 0xd8, 0xff}

// ContentTypeFromMagic sniffs data's magic bytes to distinguish PNG from
// JPEG, defaulting to image/jpeg for anything else (spec §4.G: "no generic
// image decoding, magic-byte sniffing only")
func ContentTypeFromMagic(data []byte) string {
	if bytes.HasPrefix(data, pngMagic) {
		return "image/png"
	}
	if bytes.HasPrefix(data, jpegMagic) {
		return "image/jpeg"
	}
	return "image/jpeg"
}

func unixToTime(unix int64) time.Time {
	return time.Unix(unix, 0)
}
