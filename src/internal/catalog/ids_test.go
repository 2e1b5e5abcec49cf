package catalog

import (
	"testing"
	"time"
)

func TestIdOfIsDeterministicAndContextScoped(t *testing.T) {
	a := idOf("song", "foo.mp3")
	b := idOf("song", "foo.mp3")
	if a != b {
		t.Fatalf("idOf is not deterministic: %s != %s", a, b)
	}
	if idOf("cover", "foo.mp3") == a {
		t.Fatal("idOf must be scoped by context, not just key")
	}
}

func TestCreateSongIDChangesWithLastWrite(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	if CreateSongID("a.mp3", t1) == CreateSongID("a.mp3", t2) {
		t.Fatal("song ID must depend on last-write time")
	}
}

func TestNormalizeArtistNameFallsBackToUnknown(t *testing.T) {
	if got := NormalizeArtistName("  "); got != UnknownArtist {
		t.Fatalf("got %q, want %q", got, UnknownArtist)
	}
	if got := NormalizeArtistName(" Radiohead "); got != "Radiohead" {
		t.Fatalf("got %q, want trimmed name", got)
	}
}

func TestCreateDirectoryIDDependsOnAbsolutePath(t *testing.T) {
	a := CreateDirectoryID("/music/Artist/Album")
	b := CreateDirectoryID("Artist/Album")
	if a == b {
		t.Fatal("directory IDs for an absolute and a relative path must differ")
	}
}
