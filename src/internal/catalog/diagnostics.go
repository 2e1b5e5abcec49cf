package catalog

import (
	"fmt"
	"io"
	"runtime"
)

// Diagnostics reports read-only health checks over a Snapshot, adapted from
// the kind of consistency reports a library maintainer would want to run
// after a scan (spec §12 - supplemented from the teacher's own
// maintenance-report surface, which has no direct equivalent in the
// original scope)
type Diagnostics struct {
	snap *Snapshot
}

// NewDiagnostics wraps snap for reporting
func NewDiagnostics(snap *Snapshot) *Diagnostics {
	return &Diagnostics{snap: snap}
}

// WriteSummary writes a one-paragraph catalog summary, including current
// heap usage, to w
func (d *Diagnostics) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "%6d songs\n", len(d.snap.Songs))
	fmt.Fprintf(w, "%6d albums\n", len(d.snap.Albums))
	fmt.Fprintf(w, "%6d artists\n", len(d.snap.Artists))
	fmt.Fprintf(w, "%6d playlists\n", len(d.snap.Playlists))
	fmt.Fprintf(w, "%6d invalid playlists\n\n", len(d.snap.InvalidPlaylists))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Fprintf(w, "heap in use: %d bytes\n", m.HeapAlloc)
}

// AlbumsWithInconsistentTrackNumbers reports albums where two songs share
// the same non-zero track number
func (d *Diagnostics) AlbumsWithInconsistentTrackNumbers(w io.Writer) {
	fmt.Fprint(w, "Albums with inconsistent track numbers:\n")
	for _, album := range d.snap.AllAlbums() {
		seen := map[int]bool{}
		dup := false
		for _, id := range album.SongIDs {
			song := d.snap.Songs[id]
			if song.TrackNo == 0 {
				continue
			}
			if seen[song.TrackNo] {
				dup = true
				break
			}
			seen[song.TrackNo] = true
		}
		if dup {
			fmt.Fprintf(w, "  %-30s - %s\n", album.Artist, album.Name)
		}
	}
}

// AlbumsWithMultipleCovers reports albums whose songs carry more than one
// distinct cover ID
func (d *Diagnostics) AlbumsWithMultipleCovers(w io.Writer) {
	fmt.Fprint(w, "Albums with multiple covers:\n")
	for _, album := range d.snap.AllAlbums() {
		var first ID
		mismatch := false
		for i, id := range album.SongIDs {
			song := d.snap.Songs[id]
			if i == 0 {
				first = song.CoverID
				continue
			}
			if song.CoverID != first {
				mismatch = true
				break
			}
		}
		if mismatch {
			fmt.Fprintf(w, "  %-30s - %s\n", album.Artist, album.Name)
		}
	}
}

// SongsWithoutAlbum reports songs whose Album tag was empty (and thus fell
// back to the "Unknown Album" bucket)
func (d *Diagnostics) SongsWithoutAlbum(w io.Writer) {
	fmt.Fprint(w, "Songs without an album tag:\n")
	for _, song := range d.snap.AllSongs() {
		if song.Album == "" {
			fmt.Fprintf(w, "  %s\n", song.Path)
		}
	}
}

// SongsWithoutCover reports songs with no resolvable cover art
func (d *Diagnostics) SongsWithoutCover(w io.Writer) {
	fmt.Fprint(w, "Songs without cover art:\n")
	for _, song := range d.snap.AllSongs() {
		if song.CoverID == "" {
			fmt.Fprintf(w, "  %s\n", song.Path)
		}
	}
}

// SongsWithoutReplayGain reports songs missing a track gain value
func (d *Diagnostics) SongsWithoutReplayGain(w io.Writer) {
	fmt.Fprint(w, "Songs without ReplayGain:\n")
	for _, song := range d.snap.AllSongs() {
		if song.ReplayGain.TrackGain == nil {
			fmt.Fprintf(w, "  %s\n", song.Path)
		}
	}
}
