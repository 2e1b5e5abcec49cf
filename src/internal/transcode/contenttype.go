package transcode

import "strings"

var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"opus": "audio/opus",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"flac": "audio/flac",
}

// GetContentType returns the media type for a transcode target format,
// defaulting to audio/mpeg for anything unrecognized (spec §4.H: "Content-
// type helper")
func GetContentType(format string) string {
	if ct, ok := contentTypes[strings.ToLower(format)]; ok {
		return ct
	}
	return "audio/mpeg"
}

// EstimateSize returns the expected output size in bytes for a transcode of
// durationSec seconds at bitrateKbps kbit/s, or 0 ("unknown") if either
// input is absent (spec §4.H: "bitrateKbps * durationSec * 1024 / 8")
func EstimateSize(durationSec, bitrateKbps int) int64 {
	if durationSec <= 0 || bitrateKbps <= 0 {
		return 0
	}
	return int64(bitrateKbps) * int64(durationSec) * 1024 / 8
}
