package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ushis/m3u"
)

// ConvertM3UToXSPF reads the legacy M3U/M3U8 playlist at m3uPath and writes
// an equivalent XSPF playlist at xspfPath, then renames the original to
// "<name>.m3u.bak" so it's never picked up again on a later scan (spec §4.D:
// "legacy playlists are converted once, on first encounter"). addedAt is
// backdated to the source file's modification time for every track, since
// M3U carries no per-track timestamp
func ConvertM3UToXSPF(m3uPath, xspfPath string) error {
	f, err := os.Open(m3uPath)
	if err != nil {
		return errors.Wrapf(err, "cannot open legacy playlist '%s'", m3uPath)
	}
	playlist, err := m3u.Parse(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "cannot parse legacy playlist '%s'", m3uPath)
	}

	info, err := os.Stat(m3uPath)
	addedAt := time.Now()
	if err == nil {
		addedAt = info.ModTime()
	}

	tracks := make([]WriteXSPFTrack, 0, len(playlist))
	for _, item := range playlist {
		path := strings.TrimSpace(item.Path)
		if path == "" {
			continue
		}
		tracks = append(tracks, WriteXSPFTrack{
			Location: filepath.ToSlash(path),
			Title:    item.Title,
			AddedAt:  addedAt,
		})
	}

	name := strings.TrimSuffix(filepath.Base(xspfPath), filepath.Ext(xspfPath))
	if err := WriteXSPF(xspfPath, name, tracks, nil); err != nil {
		return errors.Wrapf(err, "cannot write converted playlist '%s'", xspfPath)
	}

	if err := os.Rename(m3uPath, m3uPath+".bak"); err != nil {
		return errors.Wrapf(err, "cannot rename legacy playlist '%s' after conversion", m3uPath)
	}
	return nil
}

// IsLegacyPlaylist reports whether suffix (lower case, no dot) names a
// legacy playlist format that ConvertM3UToXSPF handles
func IsLegacyPlaylist(suffix string) bool {
	switch strings.ToLower(suffix) {
	case "m3u", "m3u8":
		return true
	}
	return false
}

// LocationForSong computes the <location> value for a song, as a path
// relative to the playlist file's own directory, not to the music folder
// root (spec §6: "a playlist at subfolder/x.xspf referring to
// subfolder/song.mp3 writes <location>song.mp3</location>")
func LocationForSong(playlistAbsPath, musicFolder, songRelPath string) string {
	songAbs := filepath.Join(musicFolder, songRelPath)
	rel, err := filepath.Rel(filepath.Dir(playlistAbsPath), songAbs)
	if err != nil {
		return filepath.ToSlash(songRelPath)
	}
	return filepath.ToSlash(rel)
}

// SongPathFromLocation is the inverse of LocationForSong: it resolves a
// <location> value read from the playlist at playlistAbsPath back to a
// path relative to musicFolder. An http(s) URL can't be resolved to a local
// song and reports ok=false
func SongPathFromLocation(playlistAbsPath, musicFolder, location string) (songRelPath string, ok bool) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return "", false
	}
	songAbs := filepath.Join(filepath.Dir(playlistAbsPath), filepath.FromSlash(location))
	rel, err := filepath.Rel(musicFolder, songAbs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
