package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ID is an opaque, stable identifier derived from a semantic key (spec §4.B).
// _byId maps compare IDs byte-wise (ordinal), which plain string comparison
// already gives us
type ID string

// idOf hashes "<context>:<key>" with SHA-256 and returns the lower-case hex
// digest, exactly as spec §4.B prescribes for every CreateXId function
func idOf(context, key string) ID {
	sum := sha256.Sum256([]byte(context + ":" + key))
	return ID(hex.EncodeToString(sum[:]))
}

// CreateSongID derives a song ID from its path (relative to the music
// folder) and the ISO-8601 form of its last-write time
func CreateSongID(relPath string, lastWrite time.Time) ID {
	return idOf("song", relPath+":"+lastWrite.UTC().Format(time.RFC3339))
}

// CreateLyricsID derives a lyrics ID from the lyrics source path (relative
// for an external .lrc file, or the relative audio path for embedded lyrics)
func CreateLyricsID(sourcePath string) ID {
	return idOf("lyrics", sourcePath)
}

// CreateCoverID derives a cover-art ID from the cover source path (relative
// for an external sidecar image, or the relative audio path for an
// embedded picture)
func CreateCoverID(sourcePath string) ID {
	return idOf("cover", sourcePath)
}

// CreateArtistID derives an artist ID from a normalized (trimmed) artist name
func CreateArtistID(name string) ID {
	return idOf("artist", NormalizeName(name))
}

// CreateAlbumID derives an album ID from the normalized artist and album
// names, joined with "|". Names are trimmed but not lower-cased: grouping
// is case-insensitive, but the key itself preserves case so two artists
// differing only by case still end up under the trimmed display form chosen
// during assembly
func CreateAlbumID(artistName, albumName string) ID {
	return idOf("album", strings.TrimSpace(artistName)+"|"+strings.TrimSpace(albumName))
}

// CreatePlaylistID derives a playlist ID from its path, relative to the
// music folder
func CreatePlaylistID(relPath string) ID {
	return idOf("playlist", relPath)
}

// CreateDirectoryID derives a directory ID from its absolute path
func CreateDirectoryID(absPath string) ID {
	return idOf("dir", absPath)
}

// NormalizeName trims whitespace and collapses an empty/blank name to "",
// leaving the Unknown-Artist/Unknown-Album fallback to the caller, which
// knows which fallback string applies
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// UnknownArtist is the display name used when a song carries no (or a
// blank) artist tag
const UnknownArtist = "Unknown Artist"

// UnknownAlbum is the display name used when a song carries no (or a
// blank) album tag
const UnknownAlbum = "Unknown Album"

// NormalizeArtistName applies the spec's whitespace-trim + Unknown-Artist
// fallback rule
func NormalizeArtistName(name string) string {
	n := NormalizeName(name)
	if n == "" {
		return UnknownArtist
	}
	return n
}

// NormalizeAlbumName applies the spec's whitespace-trim + Unknown-Album
// fallback rule
func NormalizeAlbumName(name string) string {
	n := NormalizeName(name)
	if n == "" {
		return UnknownAlbum
	}
	return n
}

// groupKey is the case-insensitive bucketing key used while assembling
// albums/artists during a scan (spec §4.F step 5: "bucket ... case-
// insensitively"). It is never persisted or exposed as an ID
func groupKey(s string) string {
	return strings.ToLower(NormalizeName(s))
}

// albumBucketKey is the in-memory bucketing key for grouping songs into
// albums, distinct from CreateAlbumID: the latter is the spec-mandated,
// persisted SHA-256 ID; this is a cheap, non-persisted uint64 map key used
// only during scan assembly (see DESIGN.md for why xxhash serves this and
// not the ID derivation)
func albumBucketKey(albumArtist, album string) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s\x00%s", groupKey(albumArtist), groupKey(album)))
}
