package catalog

import (
	"testing"
	"time"
)

func TestBuildSnapshotDerivesDirectoryIDsFromAbsolutePath(t *testing.T) {
	musicFolder := "/music"
	song := &Song{
		ID: CreateSongID("Artist/Album/track.mp3", time.Now()),
		Path: "Artist/Album/track.mp3", Title: "Track",
		AlbumArtist: "Artist", Album: "Album",
	}
	snap := buildSnapshot(musicFolder, []*Song{song}, nil, nil, nil)

	dir, err := snap.GetDirectory(song.DirectoryID)
	if err != nil {
		t.Fatalf("GetDirectory: %v", err)
	}
	wantID := CreateDirectoryID("/music/Artist/Album")
	if dir.ID != wantID {
		t.Fatalf("directory ID not derived from absolute path: got %s, want %s", dir.ID, wantID)
	}

	root, err := snap.GetDirectory(snap.RootDirectoryID)
	if err != nil {
		t.Fatalf("GetDirectory(root): %v", err)
	}
	if root.ID != CreateDirectoryID("/music") {
		t.Fatalf("root directory ID wrong: got %s", root.ID)
	}
}

func TestBuildSnapshotAlbumCreatedIsMinOfMemberSongs(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s1 := &Song{ID: CreateSongID("a.mp3", late), Path: "a.mp3", AlbumArtist: "Band", Album: "LP", Created: late}
	s2 := &Song{ID: CreateSongID("b.mp3", early), Path: "b.mp3", AlbumArtist: "Band", Album: "LP", Created: early}

	snap := buildSnapshot("/music", []*Song{s1, s2}, nil, nil, nil)
	album, err := snap.GetAlbum(s1.AlbumID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if !album.Created.Equal(early) {
		t.Fatalf("got album.Created %v, want the earlier of the two songs: %v", album.Created, early)
	}
}

func TestBuildSnapshotAlbumGenreDurationAndSongCount(t *testing.T) {
	s1 := &Song{ID: CreateSongID("a.mp3", time.Now()), Path: "a.mp3", AlbumArtist: "Band", Album: "LP", Duration: 200}
	s2 := &Song{ID: CreateSongID("b.mp3", time.Now()), Path: "b.mp3", AlbumArtist: "Band", Album: "LP", Duration: 180, Genre: "Rock"}

	snap := buildSnapshot("/music", []*Song{s1, s2}, nil, nil, nil)
	album, err := snap.GetAlbum(s1.AlbumID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if album.Duration != 380 {
		t.Fatalf("got Duration %d, want 380 (sum of member songs)", album.Duration)
	}
	if album.Genre != "Rock" {
		t.Fatalf("got Genre %q, want the first non-empty member genre", album.Genre)
	}
	if album.SongCount() != 2 {
		t.Fatalf("got SongCount() %d, want 2", album.SongCount())
	}
}

func TestBuildSnapshotAlbumSongsOrderedByTrackNumberAscending(t *testing.T) {
	s1 := &Song{ID: CreateSongID("c.mp3", time.Now()), Path: "c.mp3", AlbumArtist: "Band", Album: "LP", TrackNo: 3}
	s2 := &Song{ID: CreateSongID("a.mp3", time.Now()), Path: "a.mp3", AlbumArtist: "Band", Album: "LP", TrackNo: 1}
	s3 := &Song{ID: CreateSongID("b.mp3", time.Now()), Path: "b.mp3", AlbumArtist: "Band", Album: "LP", TrackNo: 2}

	// songs passed out of track-number order, sorted by Path internally
	snap := buildSnapshot("/music", []*Song{s1, s2, s3}, nil, nil, nil)
	album, err := snap.GetAlbum(s1.AlbumID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if len(album.SongIDs) != 3 {
		t.Fatalf("got %d songs, want 3", len(album.SongIDs))
	}
	want := []ID{s2.ID, s3.ID, s1.ID}
	for i, id := range want {
		if album.SongIDs[i] != id {
			t.Fatalf("songIDs[%d] = %s, want %s (track order 1,2,3)", i, album.SongIDs[i], id)
		}
	}
}

func TestBuildSnapshotGroupsArtistsCaseInsensitively(t *testing.T) {
	s1 := &Song{ID: CreateSongID("a.mp3", time.Now()), Path: "a.mp3", AlbumArtist: "Pink Floyd", Album: "A"}
	s2 := &Song{ID: CreateSongID("b.mp3", time.Now()), Path: "b.mp3", AlbumArtist: "PINK FLOYD", Album: "B"}

	snap := buildSnapshot("/music", []*Song{s1, s2}, nil, nil, nil)
	if s1.ArtistID != s2.ArtistID {
		t.Fatal("differently-cased artist names should bucket to the same artist")
	}
	if len(snap.Artists) != 1 {
		t.Fatalf("got %d artists, want 1", len(snap.Artists))
	}
}

func TestBuildSnapshotOmitsEmptyVirtualPlaylists(t *testing.T) {
	snap := buildSnapshot("/music", nil, nil, nil, nil)
	if _, err := snap.GetPlaylist(VirtualAllSongsID); err == nil {
		t.Fatal("All Songs should be omitted when there are no songs")
	}
	if _, err := snap.GetPlaylist(VirtualMissingTracksID); err == nil {
		t.Fatal("Missing Tracks should be omitted when there are no missing items")
	}
}

func TestBuildSnapshotNoReplayGainPlaylistUsesLiteralLeadingSpaceName(t *testing.T) {
	song := &Song{ID: CreateSongID("a.mp3", time.Now()), Path: "a.mp3", AlbumArtist: "X", Album: "Y"}
	snap := buildSnapshot("/music", []*Song{song}, nil, nil, nil)

	pl, err := snap.GetPlaylist(VirtualNoReplayGainID)
	if err != nil {
		t.Fatalf("expected a No Replay Gain playlist: %v", err)
	}
	if pl.Name != " No Replay Gain" {
		t.Fatalf("got name %q, want the literal leading-space name", pl.Name)
	}
}

func TestBuildSnapshotMissingTracksPlaylistGetsSyntheticSongs(t *testing.T) {
	missing := []MissingPlaylistItem{
		{PlaylistID: "pl1", Path: "gone.mp3", Title: "Gone", AddedAt: time.Now()},
	}
	snap := buildSnapshot("/music", nil, nil, nil, missing)

	pl, err := snap.GetPlaylist(VirtualMissingTracksID)
	if err != nil {
		t.Fatalf("expected a Missing Tracks playlist: %v", err)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(pl.Tracks))
	}
	if _, err := snap.GetSong(pl.Tracks[0].SongID); err != nil {
		t.Fatalf("synthetic song for missing track should be resolvable: %v", err)
	}
}
