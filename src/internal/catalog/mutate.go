package catalog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Mutator applies create/update/rename/delete operations to real (on-disk)
// playlists. Virtual playlists reject every operation with
// KindUnsupportedOperation (spec §4.I). Every successful operation publishes
// its result on cat immediately, so it's visible to readers without waiting
// for the next scan (spec §4.I: "all four operations publish a new snapshot
// on success")
type Mutator struct {
	cat         *Catalog
	musicFolder string
}

// NewMutator creates a Mutator that reads the current snapshot from cat to
// resolve song IDs and validate targets
func NewMutator(cat *Catalog, musicFolder string) *Mutator {
	return &Mutator{cat: cat, musicFolder: musicFolder}
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a display name into a filesystem-safe playlist file stem,
// per the slugification rule decided in SPEC_FULL.md §13: lower-case,
// runs of non [a-z0-9] collapsed to a single "-", trimmed, defaulting to
// "playlist" if nothing alphanumeric survives
func slugify(name string) string {
	s := slugNonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "playlist"
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// isInvalidPlaylistName reports whether name has no alphanumeric character
// at all, leaving slugify nothing to build a filename from
func isInvalidPlaylistName(name string) bool {
	return slugNonAlnum.ReplaceAllString(strings.ToLower(name), "") == ""
}

// uniquePlaylistName finds a display name/file path pair for name that
// doesn't collide with an existing playlist file, appending " (n)"
// (n >= 2) to the display name and re-slugifying until free (spec §4.I)
func (m *Mutator) uniquePlaylistName(name string) (string, string) {
	candidate := name
	for n := 2; ; n++ {
		path := filepath.Join(m.musicFolder, slugify(candidate)+".xspf")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return candidate, path
		}
		candidate = name + " (" + itoa(n) + ")"
	}
}

// Create makes a new playlist with the given name and initial song IDs, in
// order. addedAt is set to the current time for every track. A name with no
// alphanumeric character is rejected with KindInvalidInput. A slug that
// collides with an existing file is disambiguated by appending " (n)"
// (n >= 2) to the display name and re-slugifying until the file name is
// free (spec §4.I)
func (m *Mutator) Create(name string, songIDs []ID) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if isInvalidPlaylistName(name) {
		return nil, newErr(KindInvalidInput, "playlist name '%s' has no usable characters", name)
	}

	snap := m.cat.Current()
	name, path := m.uniquePlaylistName(name)

	tracks := make([]WriteXSPFTrack, 0, len(songIDs))
	now := time.Now()
	for _, id := range songIDs {
		song, err := snap.GetSong(id)
		if err != nil {
			return nil, wrapErr(KindInvalidInput, err, "unknown song id '%s'", id)
		}
		tracks = append(tracks, WriteXSPFTrack{Location: LocationForSong(path, m.musicFolder, song.Path), Title: song.Title, AddedAt: now})
	}
	if err := WriteXSPF(path, name, tracks, nil); err != nil {
		return nil, wrapErr(KindTransient, err, "cannot write playlist '%s'", path)
	}

	rel, _ := filepath.Rel(m.musicFolder, path)
	pl := &Playlist{ID: CreatePlaylistID(rel), Path: rel, Name: name}
	for _, id := range songIDs {
		pl.Tracks = append(pl.Tracks, PlaylistTrack{SongID: id, AddedAt: now})
	}
	m.cat.publishPlaylist("", pl)
	return pl, nil
}

// Update replaces the track list of an existing real playlist, preserving
// each surviving track's original addedAt and any unknown extension XML,
// and giving newly-added tracks the current time as addedAt
func (m *Mutator) Update(id ID, songIDs []ID) (*Playlist, error) {
	snap := m.cat.Current()
	pl, err := snap.GetPlaylist(id)
	if err != nil {
		return nil, err
	}
	if pl.Virtual {
		return nil, newErr(KindUnsupportedOperation, "playlist '%s' is virtual and read-only", id)
	}

	prevBySong := map[ID]PlaylistTrack{}
	for _, t := range pl.Tracks {
		prevBySong[t.SongID] = t
	}

	abs := filepath.Join(m.musicFolder, pl.Path)
	now := time.Now()
	tracks := make([]WriteXSPFTrack, 0, len(songIDs))
	newTracks := make([]PlaylistTrack, 0, len(songIDs))
	for _, songID := range songIDs {
		song, err := snap.GetSong(songID)
		if err != nil {
			return nil, wrapErr(KindInvalidInput, err, "unknown song id '%s'", songID)
		}
		addedAt := now
		var ext []byte
		if prev, ok := prevBySong[songID]; ok {
			addedAt = prev.AddedAt
			ext = prev.Extension
		}
		tracks = append(tracks, WriteXSPFTrack{Location: LocationForSong(abs, m.musicFolder, song.Path), Title: song.Title, AddedAt: addedAt, OtherExtXML: ext})
		newTracks = append(newTracks, PlaylistTrack{SongID: songID, AddedAt: addedAt, Extension: ext})
	}

	if err := WriteXSPF(abs, pl.Name, tracks, pl.Extension); err != nil {
		return nil, wrapErr(KindTransient, err, "cannot write playlist '%s'", abs)
	}

	updated := *pl
	updated.Tracks = newTracks
	m.cat.publishPlaylist(id, &updated)
	return &updated, nil
}

// Rename renames a real playlist's underlying file and display title. If the
// destination slug already names a file, Rename fails with KindConflict
// rather than silently disambiguating (spec §4.I). The old file is kept
// alongside the new one as "<newstem>.xspf.bak" until the rename completes,
// then removed
func (m *Mutator) Rename(id ID, newName string) (*Playlist, error) {
	newName = strings.TrimSpace(newName)
	if isInvalidPlaylistName(newName) {
		return nil, newErr(KindInvalidInput, "playlist name '%s' has no usable characters", newName)
	}

	snap := m.cat.Current()
	pl, err := snap.GetPlaylist(id)
	if err != nil {
		return nil, err
	}
	if pl.Virtual {
		return nil, newErr(KindUnsupportedOperation, "playlist '%s' is virtual and read-only", id)
	}

	oldAbs := filepath.Join(m.musicFolder, pl.Path)
	newPath := filepath.Join(m.musicFolder, slugify(newName)+".xspf")
	if newPath == oldAbs {
		return pl, nil
	}
	if _, err := os.Stat(newPath); err == nil {
		return nil, newErr(KindConflict, "a playlist already exists at '%s'", newPath)
	}

	tracks := make([]WriteXSPFTrack, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		song, err := snap.GetSong(t.SongID)
		if err != nil {
			continue
		}
		tracks = append(tracks, WriteXSPFTrack{Location: LocationForSong(newPath, m.musicFolder, song.Path), Title: song.Title, AddedAt: t.AddedAt, OtherExtXML: t.Extension})
	}
	if err := WriteXSPF(newPath, newName, tracks, pl.Extension); err != nil {
		return nil, wrapErr(KindTransient, err, "cannot write renamed playlist '%s'", newPath)
	}

	bak := newPath + ".bak"
	if err := os.Rename(oldAbs, bak); err != nil {
		os.Remove(newPath)
		return nil, wrapErr(KindTransient, err, "cannot back up old playlist '%s'", oldAbs)
	}
	os.Remove(bak)

	rel, _ := filepath.Rel(m.musicFolder, newPath)
	updated := *pl
	updated.ID = CreatePlaylistID(rel)
	updated.Path = rel
	updated.Name = newName
	m.cat.publishPlaylist(id, &updated)
	return &updated, nil
}

// Delete removes a real playlist's file
func (m *Mutator) Delete(id ID) error {
	snap := m.cat.Current()
	pl, err := snap.GetPlaylist(id)
	if err != nil {
		return err
	}
	if pl.Virtual {
		return newErr(KindUnsupportedOperation, "playlist '%s' is virtual and read-only", id)
	}
	abs := filepath.Join(m.musicFolder, pl.Path)
	if err := os.Remove(abs); err != nil {
		return wrapErr(KindTransient, err, "cannot delete playlist '%s'", abs)
	}
	m.cat.publishPlaylist(id, nil)
	return nil
}
