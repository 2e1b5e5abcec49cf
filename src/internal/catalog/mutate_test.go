package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCatalog(musicFolder string, songs ...*Song) *Catalog {
	snap := emptySnapshot()
	for _, s := range songs {
		snap.Songs[s.ID] = s
		snap.SongOrder = append(snap.SongOrder, s.ID)
	}
	cat := NewCatalog()
	cat.publish(snap)
	return cat
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var cErr *Error
	if !errors.As(err, &cErr) {
		t.Fatalf("expected *catalog.Error, got %T: %v", err, err)
	}
	return cErr.Kind
}

func TestMutatorCreateWritesFileAndPublishes(t *testing.T) {
	dir := t.TempDir()
	song := &Song{ID: CreateSongID("song.mp3", time.Now()), Path: "song.mp3", Title: "Song"}
	cat := newTestCatalog(dir, song)
	m := NewMutator(cat, dir)

	pl, err := m.Create("My Mix!!", []ID{song.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pl.Name != "My Mix!!" {
		t.Fatalf("got name %q", pl.Name)
	}
	if _, err := os.Stat(filepath.Join(dir, "my-mix.xspf")); err != nil {
		t.Fatalf("expected slugified file to exist: %v", err)
	}
	if _, err := cat.Current().GetPlaylist(pl.ID); err != nil {
		t.Fatalf("created playlist not published: %v", err)
	}
}

func TestMutatorCreateRejectsUnusableName(t *testing.T) {
	dir := t.TempDir()
	cat := newTestCatalog(dir)
	m := NewMutator(cat, dir)

	_, err := m.Create("!!!", nil)
	if err == nil {
		t.Fatal("expected an error for a name with no usable characters")
	}
	if got := kindOf(t, err); got != KindInvalidInput {
		t.Fatalf("got kind %v, want KindInvalidInput", got)
	}
}

func TestMutatorCreateDisambiguatesNameCollision(t *testing.T) {
	dir := t.TempDir()
	cat := newTestCatalog(dir)
	m := NewMutator(cat, dir)

	first, err := m.Create("Road Trip", nil)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if first.Name != "Road Trip" {
		t.Fatalf("got name %q, want %q", first.Name, "Road Trip")
	}

	second, err := m.Create("Road Trip", nil)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.Name != "Road Trip (2)" {
		t.Fatalf("got name %q, want %q", second.Name, "Road Trip (2)")
	}
	if _, err := os.Stat(filepath.Join(dir, "road-trip-2.xspf")); err != nil {
		t.Fatalf("expected disambiguated slug file to exist: %v", err)
	}

	third, err := m.Create("Road Trip", nil)
	if err != nil {
		t.Fatalf("third Create: %v", err)
	}
	if third.Name != "Road Trip (3)" {
		t.Fatalf("got name %q, want %q", third.Name, "Road Trip (3)")
	}
}

func TestMutatorUpdatePreservesAddedAtForSurvivingTracks(t *testing.T) {
	dir := t.TempDir()
	s1 := &Song{ID: CreateSongID("a.mp3", time.Now()), Path: "a.mp3"}
	s2 := &Song{ID: CreateSongID("b.mp3", time.Now()), Path: "b.mp3"}
	cat := newTestCatalog(dir, s1, s2)
	m := NewMutator(cat, dir)

	pl, err := m.Create("Mix", []ID{s1.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	originalAddedAt := pl.Tracks[0].AddedAt

	updated, err := m.Update(pl.ID, []ID{s1.ID, s2.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(updated.Tracks))
	}
	if !updated.Tracks[0].AddedAt.Equal(originalAddedAt) {
		t.Fatalf("surviving track's addedAt changed: got %v, want %v", updated.Tracks[0].AddedAt, originalAddedAt)
	}
}

func TestMutatorRenameRejectsCollisionAndKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	cat := newTestCatalog(dir)
	m := NewMutator(cat, dir)

	a, err := m.Create("Alpha", nil)
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := m.Create("Beta", nil); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	_, err = m.Rename(a.ID, "Beta")
	if err == nil {
		t.Fatal("expected conflict renaming Alpha to Beta")
	}
	if got := kindOf(t, err); got != KindConflict {
		t.Fatalf("got kind %v, want KindConflict", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "alpha.xspf")); err != nil {
		t.Fatalf("original file should still exist after a rejected rename: %v", err)
	}
}

func TestMutatorDeleteRemovesFileAndPublishes(t *testing.T) {
	dir := t.TempDir()
	cat := newTestCatalog(dir)
	m := NewMutator(cat, dir)

	pl, err := m.Create("Gone Soon", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Delete(pl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone-soon.xspf")); !os.IsNotExist(err) {
		t.Fatal("expected playlist file to be removed")
	}
	if _, err := cat.Current().GetPlaylist(pl.ID); err == nil {
		t.Fatal("expected deleted playlist to be gone from the published snapshot")
	}
}

func TestMutatorRejectsMutationsOnVirtualPlaylists(t *testing.T) {
	dir := t.TempDir()
	snap := emptySnapshot()
	virtual := &Playlist{ID: VirtualAllSongsID, Name: "All Songs", Virtual: true}
	snap.Playlists[virtual.ID] = virtual
	cat := NewCatalog()
	cat.publish(snap)
	m := NewMutator(cat, dir)

	if _, err := m.Update(virtual.ID, nil); kindOf(t, err) != KindUnsupportedOperation {
		t.Fatal("expected KindUnsupportedOperation for Update on a virtual playlist")
	}
	if _, err := m.Rename(virtual.ID, "x"); kindOf(t, err) != KindUnsupportedOperation {
		t.Fatal("expected KindUnsupportedOperation for Rename on a virtual playlist")
	}
	if err := m.Delete(virtual.ID); kindOf(t, err) != KindUnsupportedOperation {
		t.Fatal("expected KindUnsupportedOperation for Delete on a virtual playlist")
	}
}
