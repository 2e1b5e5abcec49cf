package transcode

import "testing"

func TestGetContentType(t *testing.T) {
	cases := map[string]string{
		"mp3": "audio/mpeg", "MP3": "audio/mpeg",
		"opus": "audio/opus", "ogg": "audio/ogg",
		"m4a": "audio/mp4", "flac": "audio/flac",
		"wma": "audio/mpeg",
	}
	for format, want := range cases {
		if got := GetContentType(format); got != want {
			t.Errorf("GetContentType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestEstimateSize(t *testing.T) {
	if got, want := EstimateSize(60, 128), int64(128*60*1024/8); got != want {
		t.Errorf("EstimateSize(60, 128) = %d, want %d", got, want)
	}
	if got := EstimateSize(0, 128); got != 0 {
		t.Errorf("EstimateSize(0, 128) = %d, want 0", got)
	}
	if got := EstimateSize(60, 0); got != 0 {
		t.Errorf("EstimateSize(60, 0) = %d, want 0", got)
	}
}
