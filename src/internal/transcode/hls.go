package transcode

import (
	"fmt"
	"strings"
)

const defaultSegmentDurationSec = 10

// BuildHLSPlaylist generates a finite HLS media playlist (RFC 8216) for one
// song, transcoded to codec at bitrateKbps and split into segments of
// segmentDurationSec seconds each (0 meaning the default of 10s). This is a
// pure function: segment files themselves are produced separately by the
// encoder (spec §4.H: "HLS playlist generation as a pure function")
func BuildHLSPlaylist(songID string, durationSec, bitrateKbps int, codec string, segmentDurationSec int) string {
	if segmentDurationSec <= 0 {
		segmentDurationSec = defaultSegmentDurationSec
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:%d\n#EXT-X-MEDIA-SEQUENCE:0\n", segmentDurationSec)

	remaining := durationSec
	for i := 0; remaining > 0; i++ {
		segLen := segmentDurationSec
		if remaining < segLen {
			segLen = remaining
		}
		fmt.Fprintf(&b, "#EXTINF:%d.0,\n./hls/%s/%d.%s?bitRate=%d\n", segLen, songID, i, codec, bitrateKbps)
		remaining -= segLen
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

// SegmentCount returns how many segments of segmentDurationSec seconds a
// track of durationSec seconds needs, rounding up so the final segment may
// be shorter than the target duration
func SegmentCount(durationSec, segmentDurationSec int) int {
	if segmentDurationSec <= 0 {
		segmentDurationSec = defaultSegmentDurationSec
	}
	if durationSec <= 0 {
		return 0
	}
	n := durationSec / segmentDurationSec
	if durationSec%segmentDurationSec != 0 {
		n++
	}
	return n
}
