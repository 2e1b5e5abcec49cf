package catalog

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// buildSnapshot groups songs into albums and artists (bucketed
// case-insensitively via albumBucketKey/groupKey, spec §4.F step 5), builds
// the directory tree from each song's relative path, and merges in the
// playlists (real, already-parsed, plus the virtual ones derived here).
// musicFolder is the absolute path of the library root, needed only to
// derive directory IDs from absolute paths per spec §4.B
func buildSnapshot(musicFolder string, songs []*Song, playlists []*Playlist, invalidPlaylists []InvalidPlaylist, missing []MissingPlaylistItem) *Snapshot {
	snap := emptySnapshot()

	sort.Slice(songs, func(i, j int) bool { return songs[i].Path < songs[j].Path })

	type albumBucket struct {
		id       ID
		artist   string
		name     string
		yearMin  int
		genre    string
		duration int
		created  timeOrZero
		coverID  ID
		songIDs  []ID
	}
	albumsByKey := map[uint64]*albumBucket{}
	var albumOrder []uint64

	type artistBucket struct {
		id       ID
		name     string
		albumIDs map[ID]bool
		order    []ID
	}
	artistsByKey := map[string]*artistBucket{}
	var artistOrder []string

	for _, song := range songs {
		artistName := NormalizeArtistName(song.AlbumArtist)
		albumName := NormalizeAlbumName(song.Album)

		ak := groupKey(artistName)
		ar, ok := artistsByKey[ak]
		if !ok {
			ar = &artistBucket{id: CreateArtistID(artistName), name: artistName, albumIDs: map[ID]bool{}}
			artistsByKey[ak] = ar
			artistOrder = append(artistOrder, ak)
		}
		song.ArtistID = ar.id

		bk := albumBucketKey(artistName, albumName)
		al, ok := albumsByKey[bk]
		if !ok {
			al = &albumBucket{id: CreateAlbumID(ar.name, albumName), artist: ar.name, name: albumName, yearMin: song.Year, created: timeOrZero{song.Created, true}}
			albumsByKey[bk] = al
			albumOrder = append(albumOrder, bk)
			if !ar.albumIDs[al.id] {
				ar.albumIDs[al.id] = true
				ar.order = append(ar.order, al.id)
			}
		}
		song.AlbumID = al.id
		if song.Year > 0 && (al.yearMin == 0 || song.Year < al.yearMin) {
			al.yearMin = song.Year
		}
		if !song.Created.IsZero() && (!al.created.set || song.Created.Before(al.created.t)) {
			al.created = timeOrZero{song.Created, true}
		}
		if al.coverID == "" && song.CoverID != "" {
			al.coverID = song.CoverID
		}
		if al.genre == "" && song.Genre != "" {
			al.genre = song.Genre
		}
		al.duration += song.Duration
		al.songIDs = append(al.songIDs, song.ID)

		snap.Songs[song.ID] = song
		snap.SongOrder = append(snap.SongOrder, song.ID)

		if song.Cover != nil && song.CoverID != "" {
			if _, exists := snap.Covers[song.CoverID]; !exists {
				snap.Covers[song.CoverID] = song.Cover
			}
		}
	}

	for _, bk := range albumOrder {
		al := albumsByKey[bk]
		sort.SliceStable(al.songIDs, func(i, j int) bool {
			return snap.Songs[al.songIDs[i]].TrackNo < snap.Songs[al.songIDs[j]].TrackNo
		})
		snap.Albums[al.id] = &Album{
			ID: al.id, Name: al.name, Artist: al.artist, ArtistID: CreateArtistID(al.artist),
			Year: al.yearMin, Genre: al.genre, Duration: al.duration,
			Created: al.created.t, CoverID: al.coverID, SongIDs: al.songIDs,
		}
		snap.AlbumOrder = append(snap.AlbumOrder, al.id)
	}
	for _, ak := range artistOrder {
		ar := artistsByKey[ak]
		snap.Artists[ar.id] = &Artist{ID: ar.id, Name: ar.name, AlbumIDs: ar.order}
		snap.ArtistOrder = append(snap.ArtistOrder, ar.id)
	}

	buildDirectoryTree(snap, musicFolder, songs)

	for _, p := range playlists {
		snap.Playlists[p.ID] = p
	}
	virtualPlaylists, syntheticSongs := buildVirtualPlaylists(snap.Songs, snap.SongOrder, missing)
	for _, p := range virtualPlaylists {
		snap.Playlists[p.ID] = p
	}
	for id, s := range syntheticSongs {
		snap.Songs[id] = s
	}
	snap.InvalidPlaylists = invalidPlaylists

	return snap
}

// timeOrZero distinguishes "no value seen yet" from "zero time.Time seen"
// while folding album Created down to the minimum of its songs'
type timeOrZero struct {
	t   time.Time
	set bool
}

// buildDirectoryTree derives Directory entities from each song's relative
// path, creating every intermediate directory even if it holds no songs
// directly, and links DirectoryID back onto each song. Directory IDs are
// derived from the absolute path (spec §4.B), while Path/Name stay relative
// to musicFolder for display
func buildDirectoryTree(snap *Snapshot, musicFolder string, songs []*Song) {
	rootID := CreateDirectoryID(filepath.Clean(musicFolder))
	snap.RootDirectoryID = rootID
	ensureDir := func(relPath string) *Directory {
		abs := musicFolder
		if relPath != "" {
			abs = filepath.Join(musicFolder, relPath)
		}
		id := CreateDirectoryID(filepath.Clean(abs))
		if d, ok := snap.Directories[id]; ok {
			return d
		}
		name := filepath.Base(relPath)
		if relPath == "" {
			name = ""
		}
		d := &Directory{ID: id, Path: relPath, Name: name}
		snap.Directories[id] = d
		return d
	}
	root := ensureDir("")

	linkChild := func(parent *Directory, childID ID) {
		for _, existing := range parent.ChildIDs {
			if existing == childID {
				return
			}
		}
		parent.ChildIDs = append(parent.ChildIDs, childID)
	}

	for _, song := range songs {
		dirPath := filepath.Dir(song.Path)
		if dirPath == "." {
			dirPath = ""
		}
		segments := []string{}
		if dirPath != "" {
			segments = strings.Split(dirPath, string(filepath.Separator))
		}

		parent := root
		acc := ""
		for _, seg := range segments {
			if acc == "" {
				acc = seg
			} else {
				acc = acc + string(filepath.Separator) + seg
			}
			child := ensureDir(acc)
			child.ParentID = parent.ID
			linkChild(parent, child.ID)
			parent = child
		}
		song.DirectoryID = parent.ID
		parent.SongIDs = append(parent.SongIDs, song.ID)
	}
}
