package catalog

import "time"

// CoverArt describes where a cover image comes from, before it's been
// materialized into the on-disk cache (spec §3, §4.G)
type CoverArt struct {
	SourcePath string // relative to the music folder; the audio file's own
	                   // path when Embedded is true
	Embedded   bool
	ModTime    time.Time // source's last-write time, used for cache staleness
}

// Lyrics describes where a song's lyrics come from (spec §3)
type Lyrics struct {
	SourcePath string // relative .lrc path, or the audio file's own path
	                   // when Embedded is true
	Embedded bool
}

// Song is one playable audio file (spec §3)
type Song struct {
	ID          ID
	Path        string // relative to the music folder
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	AlbumID     ID
	ArtistID    ID
	Genre       string
	TrackNo     int
	Year        int
	Duration    int // seconds
	Bitrate     int // 0 = unknown
	ISRC        string
	ReplayGain  ReplayGain
	Cover       *CoverArt // nil if none
	Lyrics      *Lyrics   // nil if none
	CoverID     ID        // "" if none; derived from Cover.SourcePath
	LyricsID    ID        // "" if none; derived from Lyrics.SourcePath
	Size        int64
	Created     time.Time // file creation time, best-effort (see fileCreatedTime)
	LastWrite   time.Time
	DirectoryID ID
}

// Album groups songs that share a normalized (artist, album) key
type Album struct {
	ID       ID
	Name     string
	Artist   string
	ArtistID ID
	Year     int       // year of the earliest song, 0 if unknown
	Genre    string    // inherited from the first member song that has one
	Duration int       // seconds, sum of member songs' Duration (spec §3)
	Created  time.Time // min of member songs' Created (spec §3)
	CoverID  ID        // "" if no song in the album carries a cover
	SongIDs  []ID      // ordered by track number ascending, 0 ("unknown") first
}

// SongCount is the number of songs in the album (spec §3)
func (a *Album) SongCount() int {
	return len(a.SongIDs)
}

// Artist groups albums and songs that share a normalized artist name
type Artist struct {
	ID       ID
	Name     string
	AlbumIDs []ID
}

// Directory is one node of the music folder's directory tree
type Directory struct {
	ID       ID
	Path     string // relative to the music folder, "" for the root
	Name     string
	ParentID ID // "" for the root
	ChildIDs []ID
	SongIDs  []ID
}

// PlaylistTrack is one entry of a playlist, in order
type PlaylistTrack struct {
	SongID    ID
	AddedAt   time.Time
	Extension []byte // preserved opaque XML, nil if none
}

// Playlist is a named, ordered list of songs (spec §3, §4.D, §4.I)
type Playlist struct {
	ID      ID
	Path    string // relative to the music folder; "" for virtual playlists
	Name    string
	Virtual bool
	Tracks  []PlaylistTrack
	// Missing holds unresolved entries for the virtual "missing tracks"
	// playlist; empty for every other playlist
	Missing   []MissingPlaylistItem
	Extension []byte // preserved opaque playlist-level XML, nil if none
}

// MissingPlaylistItem is a playlist entry that pointed at a song no longer
// resolvable at the time the playlist was last read (spec §4.D)
type MissingPlaylistItem struct {
	PlaylistID ID
	Path       string
	Title      string
	AddedAt    time.Time
}

// InvalidPlaylist is a playlist file that could not be parsed at all
// (spec §4.D)
type InvalidPlaylist struct {
	Path  string
	Cause string
}
