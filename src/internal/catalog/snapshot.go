package catalog

import (
	l "github.com/sirupsen/logrus"
	"math/rand"
	"sort"
	"strings"
	"sync/atomic"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "catalog"})

// Snapshot is an immutable view of the whole catalog. Every query method is
// safe to call from any number of goroutines without locking: a Snapshot is
// never mutated after Catalog.publish hands it out (spec §4.B, design
// note §9 - entities reference each other by ID into the snapshot's maps,
// never by pointer into another snapshot)
type Snapshot struct {
	Songs       map[ID]*Song
	Albums      map[ID]*Album
	Artists     map[ID]*Artist
	Directories map[ID]*Directory
	Playlists   map[ID]*Playlist
	// Covers indexes every distinct cover source by the cover ID it was
	// derived from, so a bare cover ID (as opposed to a song or album ID)
	// can be resolved back to its source (spec §4.G)
	Covers map[ID]*CoverArt

	SongOrder   []ID // stable iteration order: path order at assembly time
	AlbumOrder  []ID
	ArtistOrder []ID

	InvalidPlaylists []InvalidPlaylist
	RootDirectoryID  ID
}

// emptySnapshot is what a Catalog holds before its first successful scan
func emptySnapshot() *Snapshot {
	return &Snapshot{
		Songs:       map[ID]*Song{},
		Albums:      map[ID]*Album{},
		Artists:     map[ID]*Artist{},
		Directories: map[ID]*Directory{},
		Playlists:   map[ID]*Playlist{},
		Covers:      map[ID]*CoverArt{},
	}
}

// withPlaylist returns a new Snapshot identical to s except its Playlists
// map has newPl put in place of oldID (oldID is always removed first, so a
// rename that changes a playlist's ID works in one call). Passing nil for
// newPl just removes oldID. Every other field is shared by reference with s
// (design note §9: "playlist edits copy only the playlist map")
func (s *Snapshot) withPlaylist(oldID ID, newPl *Playlist) *Snapshot {
	next := *s
	pls := make(map[ID]*Playlist, len(s.Playlists)+1)
	for k, v := range s.Playlists {
		pls[k] = v
	}
	if oldID != "" {
		delete(pls, oldID)
	}
	if newPl != nil {
		pls[newPl.ID] = newPl
	}
	next.Playlists = pls
	return &next
}

// Catalog holds the currently published Snapshot behind an atomic pointer,
// so readers never block on a scan in progress and a scan never blocks a
// reader (spec §4.B: "readers never block")
type Catalog struct {
	current atomic.Pointer[Snapshot]
}

// NewCatalog returns a Catalog whose initial snapshot is empty
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.current.Store(emptySnapshot())
	return c
}

// Current returns the currently published snapshot
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// publish atomically swaps in a freshly assembled snapshot
func (c *Catalog) publish(s *Snapshot) {
	c.current.Store(s)
}

// publishPlaylist atomically swaps in the current snapshot with oldID
// replaced by newPl (see Snapshot.withPlaylist), used by the playlist
// mutator so a create/update/rename/delete is visible to readers without
// waiting for the next scan (spec §4.I: "all four operations publish a new
// snapshot on success")
func (c *Catalog) publishPlaylist(oldID ID, newPl *Playlist) {
	for {
		cur := c.current.Load()
		next := cur.withPlaylist(oldID, newPl)
		if c.current.CompareAndSwap(cur, next) {
			return
		}
	}
}

// GetSong looks up a song by ID
func (s *Snapshot) GetSong(id ID) (*Song, error) {
	if song, ok := s.Songs[id]; ok {
		return song, nil
	}
	return nil, newErr(KindNotFound, "no song with id '%s'", id)
}

// GetAlbum looks up an album by ID
func (s *Snapshot) GetAlbum(id ID) (*Album, error) {
	if a, ok := s.Albums[id]; ok {
		return a, nil
	}
	return nil, newErr(KindNotFound, "no album with id '%s'", id)
}

// GetArtist looks up an artist by ID
func (s *Snapshot) GetArtist(id ID) (*Artist, error) {
	if a, ok := s.Artists[id]; ok {
		return a, nil
	}
	return nil, newErr(KindNotFound, "no artist with id '%s'", id)
}

// GetDirectory looks up a directory by ID
func (s *Snapshot) GetDirectory(id ID) (*Directory, error) {
	if d, ok := s.Directories[id]; ok {
		return d, nil
	}
	return nil, newErr(KindNotFound, "no directory with id '%s'", id)
}

// GetPlaylist looks up a playlist (real or virtual) by ID
func (s *Snapshot) GetPlaylist(id ID) (*Playlist, error) {
	if p, ok := s.Playlists[id]; ok {
		return p, nil
	}
	return nil, newErr(KindNotFound, "no playlist with id '%s'", id)
}

// AllSongs returns every song in stable order
func (s *Snapshot) AllSongs() []*Song {
	out := make([]*Song, 0, len(s.SongOrder))
	for _, id := range s.SongOrder {
		out = append(out, s.Songs[id])
	}
	return out
}

// AllAlbums returns every album in stable order
func (s *Snapshot) AllAlbums() []*Album {
	out := make([]*Album, 0, len(s.AlbumOrder))
	for _, id := range s.AlbumOrder {
		out = append(out, s.Albums[id])
	}
	return out
}

// AllArtists returns every artist in stable order
func (s *Snapshot) AllArtists() []*Artist {
	out := make([]*Artist, 0, len(s.ArtistOrder))
	for _, id := range s.ArtistOrder {
		out = append(out, s.Artists[id])
	}
	return out
}

// AllPlaylists returns every playlist, real and virtual
func (s *Snapshot) AllPlaylists() []*Playlist {
	out := make([]*Playlist, 0, len(s.Playlists))
	for _, p := range s.Playlists {
		out = append(out, p)
	}
	return out
}

// AllDirectories returns every directory in the tree, in no particular
// order beyond map iteration (the tree shape itself carries the real
// ordering via ParentID/ChildIDs)
func (s *Snapshot) AllDirectories() []*Directory {
	out := make([]*Directory, 0, len(s.Directories))
	for _, d := range s.Directories {
		out = append(out, d)
	}
	return out
}

// GetGenres returns every genre that at least one song carries, sorted
// ordinally (spec §4.E: "GetGenres (ordinal-sorted)")
func (s *Snapshot) GetGenres() []string {
	seen := map[string]bool{}
	var genres []string
	for _, song := range s.Songs {
		if song.Genre == "" || seen[song.Genre] {
			continue
		}
		seen[song.Genre] = true
		genres = append(genres, song.Genre)
	}
	sort.Strings(genres)
	return genres
}

// GetSongsByGenre returns every song carrying the given genre, in stable
// catalog order
func (s *Snapshot) GetSongsByGenre(genre string) []*Song {
	var out []*Song
	for _, id := range s.SongOrder {
		song := s.Songs[id]
		if song.Genre == genre {
			out = append(out, song)
		}
	}
	return out
}

// GetRandomAlbums returns up to n albums chosen uniformly at random, with no
// repeats, in random order
func (s *Snapshot) GetRandomAlbums(n int) []*Album {
	ids := append([]ID(nil), s.AlbumOrder...)
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if n > len(ids) {
		n = len(ids)
	}
	out := make([]*Album, 0, n)
	for _, id := range ids[:n] {
		out = append(out, s.Albums[id])
	}
	return out
}

// GetRandomSongs returns up to n songs chosen uniformly at random, with no
// repeats, in random order
func (s *Snapshot) GetRandomSongs(n int) []*Song {
	ids := append([]ID(nil), s.SongOrder...)
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if n > len(ids) {
		n = len(ids)
	}
	out := make([]*Song, 0, n)
	for _, id := range ids[:n] {
		out = append(out, s.Songs[id])
	}
	return out
}

// GetNewestAlbums returns up to n albums ordered by Created descending
// (spec §4.E: "by created desc"), ties broken by album name
func (s *Snapshot) GetNewestAlbums(n int) []*Album {
	all := s.AllAlbums()
	sortAlbumsByCreatedDesc(all)
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func sortAlbumsByCreatedDesc(albums []*Album) {
	for i := 1; i < len(albums); i++ {
		for j := i; j > 0; j-- {
			a, b := albums[j-1], albums[j]
			if a.Created.Before(b.Created) || (a.Created.Equal(b.Created) && a.Name > b.Name) {
				albums[j-1], albums[j] = albums[j], albums[j-1]
				continue
			}
			break
		}
	}
}

// ResolveCoverSource resolves id to the CoverArt it names, trying it first
// as a song ID, then an album ID, then a bare cover ID (spec §4.G: a client
// may ask for cover art by any of the three)
func (s *Snapshot) ResolveCoverSource(id ID) (*CoverArt, error) {
	if song, ok := s.Songs[id]; ok {
		if song.Cover == nil {
			return nil, newErr(KindNotFound, "song '%s' has no cover art", id)
		}
		return song.Cover, nil
	}
	if album, ok := s.Albums[id]; ok {
		if album.CoverID == "" {
			return nil, newErr(KindNotFound, "album '%s' has no cover art", id)
		}
		if cover, ok := s.Covers[album.CoverID]; ok {
			return cover, nil
		}
		return nil, newErr(KindNotFound, "no cover with id '%s'", album.CoverID)
	}
	if cover, ok := s.Covers[id]; ok {
		return cover, nil
	}
	return nil, newErr(KindNotFound, "no cover art resolvable from id '%s'", id)
}

// ResolveLyricsSource resolves a song ID to its Lyrics, if any
func (s *Snapshot) ResolveLyricsSource(songID ID) (*Lyrics, error) {
	song, err := s.GetSong(songID)
	if err != nil {
		return nil, err
	}
	if song.Lyrics == nil {
		return nil, newErr(KindNotFound, "song '%s' has no lyrics", songID)
	}
	return song.Lyrics, nil
}

// SearchResult bundles the three entity kinds a search can match
type SearchResult struct {
	Songs   []*Song
	Albums  []*Album
	Artists []*Artist
}

// SearchAll performs a case-insensitive substring search (spec §4.E): songs
// match on title OR artist OR album, albums match on album name OR
// album-artist name, artists match on name
func (s *Snapshot) SearchAll(query string) SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	var res SearchResult
	if q == "" {
		return res
	}
	contains := func(field string) bool { return strings.Contains(strings.ToLower(field), q) }
	for _, song := range s.AllSongs() {
		if contains(song.Title) || contains(song.Artist) || contains(song.Album) {
			res.Songs = append(res.Songs, song)
		}
	}
	for _, album := range s.AllAlbums() {
		if contains(album.Name) || contains(album.Artist) {
			res.Albums = append(res.Albums, album)
		}
	}
	for _, artist := range s.AllArtists() {
		if contains(artist.Name) {
			res.Artists = append(res.Artists, artist)
		}
	}
	return res
}
