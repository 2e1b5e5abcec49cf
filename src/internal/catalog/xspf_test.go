package catalog

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteXSPFThenParseRoundTripsAddedAt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mix.xspf")

	addedAt := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	err := WriteXSPF(path, "My Mix", []WriteXSPFTrack{
		{Location: "song.mp3", Title: "Song", AddedAt: addedAt},
	}, nil)
	if err != nil {
		t.Fatalf("WriteXSPF: %v", err)
	}

	parsed, err := ParseXSPF(path)
	if err != nil {
		t.Fatalf("ParseXSPF: %v", err)
	}
	if parsed.Title != "My Mix" {
		t.Fatalf("got title %q", parsed.Title)
	}
	if len(parsed.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(parsed.Tracks))
	}
	tr := parsed.Tracks[0]
	if tr.Location != "song.mp3" {
		t.Fatalf("got location %q", tr.Location)
	}
	if !tr.HasAddedAt || !tr.AddedAt.Equal(addedAt) {
		t.Fatalf("got addedAt %v (has=%v), want %v", tr.AddedAt, tr.HasAddedAt, addedAt)
	}
}

func TestWriteXSPFPreservesUnknownExtensionVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mix.xspf")

	foreignExt := []byte(`<extension application="http://example.com/foreign/1/"><foo:bar>baz</foo:bar></extension>`)
	err := WriteXSPF(path, "Mix", []WriteXSPFTrack{
		{Location: "a.mp3", AddedAt: time.Now(), OtherExtXML: foreignExt},
	}, nil)
	if err != nil {
		t.Fatalf("WriteXSPF: %v", err)
	}

	parsed, err := ParseXSPF(path)
	if err != nil {
		t.Fatalf("ParseXSPF: %v", err)
	}
	if len(parsed.Tracks) != 1 {
		t.Fatalf("got %d tracks", len(parsed.Tracks))
	}
	if !strings.Contains(string(parsed.Tracks[0].OtherExtXML), "foo:bar") {
		t.Fatalf("foreign extension not preserved, got %q", parsed.Tracks[0].OtherExtXML)
	}

	// round-trip again: rewrite using the parsed extension and make sure
	// it's still there a second time
	err = WriteXSPF(path, "Mix", []WriteXSPFTrack{
		{Location: "a.mp3", AddedAt: time.Now(), OtherExtXML: parsed.Tracks[0].OtherExtXML},
	}, nil)
	if err != nil {
		t.Fatalf("second WriteXSPF: %v", err)
	}
	reparsed, err := ParseXSPF(path)
	if err != nil {
		t.Fatalf("second ParseXSPF: %v", err)
	}
	if !strings.Contains(string(reparsed.Tracks[0].OtherExtXML), "foo:bar") {
		t.Fatal("foreign extension lost on second round-trip")
	}
}

func TestLocationForSongIsRelativeToPlaylistDirNotMusicRoot(t *testing.T) {
	musicFolder := "/music"
	playlistAbsPath := "/music/subfolder/x.xspf"
	songRelPath := "subfolder/song.mp3"

	got := LocationForSong(playlistAbsPath, musicFolder, songRelPath)
	if got != "song.mp3" {
		t.Fatalf("got location %q, want %q", got, "song.mp3")
	}
}

func TestLocationForSongClimbsOutOfPlaylistDirWhenNeeded(t *testing.T) {
	musicFolder := "/music"
	playlistAbsPath := "/music/playlists/x.xspf"
	songRelPath := "artist/song.mp3"

	got := LocationForSong(playlistAbsPath, musicFolder, songRelPath)
	want := filepath.ToSlash(filepath.Join("..", "artist", "song.mp3"))
	if got != want {
		t.Fatalf("got location %q, want %q", got, want)
	}
}

func TestSongPathFromLocationInvertsLocationForSong(t *testing.T) {
	musicFolder := "/music"
	playlistAbsPath := "/music/subfolder/x.xspf"
	songRelPath := "subfolder/song.mp3"

	loc := LocationForSong(playlistAbsPath, musicFolder, songRelPath)
	got, ok := SongPathFromLocation(playlistAbsPath, musicFolder, loc)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if got != songRelPath {
		t.Fatalf("got %q, want %q", got, songRelPath)
	}
}

func TestSongPathFromLocationRejectsHTTPURLs(t *testing.T) {
	_, ok := SongPathFromLocation("/music/x.xspf", "/music", "https://example.com/song.mp3")
	if ok {
		t.Fatal("expected ok=false for an http(s) location")
	}
}
