package catalog

// Virtual playlist IDs are fixed, well-known strings rather than derived via
// idOf: they don't correspond to a file on disk, so there's no semantic key
// to hash (spec §4.I)
const (
	VirtualAllSongsID      ID = "virtual:all-songs"
	VirtualMissingTracksID ID = "virtual:missing-tracks"
	VirtualNoReplayGainID  ID = "virtual:no-replay-gain"
)

// buildVirtualPlaylists derives the read-only virtual playlists from a
// freshly assembled snapshot. A virtual playlist that would be empty is
// omitted entirely (spec §4.E: "no-replay-gain is omitted when every song
// has gain", "missing-tracks is omitted from enumerations when the missing
// list is empty"), rather than published as a zero-track playlist.
// syntheticSongs collects the phantom "[Missing] ..." Song entries the
// missing-tracks playlist needs, so the caller can fold them into the
// snapshot's Songs map (for GetSong lookups) without polluting SongOrder,
// counts, or album/artist grouping
func buildVirtualPlaylists(songs map[ID]*Song, songOrder []ID, missing []MissingPlaylistItem) (playlists []*Playlist, syntheticSongs map[ID]*Song) {
	syntheticSongs = map[ID]*Song{}

	if len(songOrder) > 0 {
		all := &Playlist{ID: VirtualAllSongsID, Name: "All Songs", Virtual: true}
		for _, id := range songOrder {
			all.Tracks = append(all.Tracks, PlaylistTrack{SongID: id, AddedAt: songs[id].Created})
		}
		playlists = append(playlists, all)
	}

	if len(missing) > 0 {
		mp := &Playlist{ID: VirtualMissingTracksID, Name: "Missing Tracks", Virtual: true, Missing: missing}
		for _, m := range missing {
			songID := idOf("missing", string(m.PlaylistID)+":"+m.Path)
			syntheticSongs[songID] = &Song{ID: songID, Path: m.Path, Title: "[Missing] " + m.Path}
			mp.Tracks = append(mp.Tracks, PlaylistTrack{SongID: songID, AddedAt: m.AddedAt})
		}
		playlists = append(playlists, mp)
	}

	var noRG []ID
	for _, id := range songOrder {
		s := songs[id]
		if s.ReplayGain.TrackGain == nil {
			noRG = append(noRG, id)
		}
	}
	if len(noRG) > 0 {
		p := &Playlist{ID: VirtualNoReplayGainID, Name: " No Replay Gain", Virtual: true}
		for _, id := range noRG {
			p.Tracks = append(p.Tracks, PlaylistTrack{SongID: id, AddedAt: songs[id].Created})
		}
		playlists = append(playlists, p)
	}

	return playlists, syntheticSongs
}

// IsVirtualPlaylistID reports whether id names a virtual playlist
func IsVirtualPlaylistID(id ID) bool {
	return id == VirtualAllSongsID || id == VirtualMissingTracksID || id == VirtualNoReplayGainID
}
