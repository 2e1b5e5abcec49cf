package transcode

import (
	"strings"
	"testing"
)

func TestBuildHLSPlaylistEmitsHeaderAndSegments(t *testing.T) {
	got := BuildHLSPlaylist("abc123", 25, 128, "mp3", 10)
	want := "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MEDIA-SEQUENCE:0\n" +
		"#EXTINF:10.0,\n./hls/abc123/0.mp3?bitRate=128\n" +
		"#EXTINF:10.0,\n./hls/abc123/1.mp3?bitRate=128\n" +
		"#EXTINF:5.0,\n./hls/abc123/2.mp3?bitRate=128\n" +
		"#EXT-X-ENDLIST\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildHLSPlaylistDefaultsSegmentDuration(t *testing.T) {
	got := BuildHLSPlaylist("s", 10, 128, "mp3", 0)
	if want := "#EXT-X-TARGETDURATION:10\n"; !strings.Contains(got, want) {
		t.Fatalf("expected default 10s target duration, got:\n%s", got)
	}
}

func TestSegmentCountRoundsUp(t *testing.T) {
	cases := []struct {
		durationSec, segmentDurationSec, want int
	}{
		{25, 10, 3},
		{30, 10, 3},
		{0, 10, 0},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := SegmentCount(c.durationSec, c.segmentDurationSec); got != c.want {
			t.Errorf("SegmentCount(%d, %d) = %d, want %d", c.durationSec, c.segmentDurationSec, got, c.want)
		}
	}
}

