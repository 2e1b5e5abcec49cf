package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsLegacyPlaylist(t *testing.T) {
	cases := map[string]bool{"m3u": true, "M3U": true, "m3u8": true, "xspf": false, "mp3": false}
	for suffix, want := range cases {
		if got := IsLegacyPlaylist(suffix); got != want {
			t.Errorf("IsLegacyPlaylist(%q) = %v, want %v", suffix, got, want)
		}
	}
}

func TestConvertM3UToXSPFBacksUpOriginalAndWritesXSPF(t *testing.T) {
	dir := t.TempDir()
	m3uPath := filepath.Join(dir, "old.m3u")
	xspfPath := filepath.Join(dir, "old.xspf")

	content := "#EXTM3U\n#EXTINF:200,Some Artist - Some Title\nsong.mp3\n"
	if err := os.WriteFile(m3uPath, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := ConvertM3UToXSPF(m3uPath, xspfPath); err != nil {
		t.Fatalf("ConvertM3UToXSPF: %v", err)
	}

	if _, err := os.Stat(m3uPath); !os.IsNotExist(err) {
		t.Fatal("original .m3u should have been renamed away")
	}
	if _, err := os.Stat(m3uPath + ".bak"); err != nil {
		t.Fatalf("expected .m3u.bak to exist: %v", err)
	}

	parsed, err := ParseXSPF(xspfPath)
	if err != nil {
		t.Fatalf("ParseXSPF on converted playlist: %v", err)
	}
	if len(parsed.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(parsed.Tracks))
	}
	if parsed.Tracks[0].Location != "song.mp3" {
		t.Fatalf("got location %q, want %q", parsed.Tracks[0].Location, "song.mp3")
	}
}
