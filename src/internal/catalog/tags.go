package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
)

// ReplayGain carries the four independently-optional ReplayGain numbers a
// track may carry (spec §3, §4.A)
type ReplayGain struct {
	TrackGain, TrackPeak *float64
	AlbumGain, AlbumPeak *float64
}

// ParsedSong is everything the tag reader extracts from one audio file,
// short of the resolved IDs that catalog assembly adds later (spec §4.A)
type ParsedSong struct {
	Title        string
	Album        string
	AlbumArtist  string
	Artist       string
	Genre        string
	TrackNo      int // 0 = unknown
	Year         int // 0 = unknown
	Duration     int // seconds
	Bitrate      int // 0 = unknown
	ISRC         string
	ReplayGain   ReplayGain
	EmbeddedCover   []byte // nil if none
	EmbeddedCoverExt string // "jpeg", "png", ...
	EmbeddedLyrics  string // "" if none
}

// UnreadableFile is returned when the file cannot even be opened or its
// container format cannot be parsed at all (spec §4.A)
type UnreadableFile struct{ Path string; Cause error }

func (e *UnreadableFile) Error() string { return fmt.Sprintf("cannot read '%s': %v", e.Path, e.Cause) }
func (e *UnreadableFile) Unwrap() error { return e.Cause }

// UnparseableTags is returned when the file opens but the tag library
// rejects its metadata (spec §4.A)
type UnparseableTags struct{ Path string; Cause error }

func (e *UnparseableTags) Error() string {
	return fmt.Sprintf("cannot parse tags of '%s': %v", e.Path, e.Cause)
}
func (e *UnparseableTags) Unwrap() error { return e.Cause }

// ReadTags extracts metadata from the audio file at path. Both
// *UnreadableFile and *UnparseableTags are non-fatal to a scan: the caller
// skips the file and may record a diagnostic
func ReadTags(path, separator string) (*ParsedSong, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableFile{Path: path, Cause: err}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, &UnparseableTags{Path: path, Cause: err}
	}

	ps := &ParsedSong{
		Title: m.Title(),
		Album: m.Album(),
		Genre: splitFirst(m.Genre(), separator),
		Year:  m.Year(),
		ISRC:  rawString(m, "TSRC", "isrc"),
	}
	ps.TrackNo, _ = firstOf(m.Track())
	ps.Artist = splitFirst(m.Artist(), separator)
	ps.AlbumArtist = splitFirst(m.AlbumArtist(), separator)
	if ps.AlbumArtist == "" {
		ps.AlbumArtist = ps.Artist
	}

	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		ps.EmbeddedCover = pic.Data
		ps.EmbeddedCoverExt = extFromMimeType(pic.MIMEType, pic.Ext)
	}

	ps.ReplayGain = readReplayGain(m)

	if lyrics := rawString(m, "USLT", "lyrics"); lyrics != "" {
		ps.EmbeddedLyrics = lyrics
	}

	suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	probe := probeAudio(path, suffix)
	ps.Duration = probe.DurationSec
	ps.Bitrate = probe.BitrateKbps

	return ps, nil
}

// firstOf adapts dhowden/tag's (n, total) track/disc accessor to "just n"
func firstOf(n, _ int) (int, bool) { return n, n > 0 }

// splitFirst keeps only the first entry of a separator-joined multi-value
// tag, trimmed. euterpe models Song.Artist/AlbumArtist as a single display
// string (spec §3); callers needing every contributing artist would split
// on sep themselves
func splitFirst(val, sep string) string {
	if sep == "" {
		return strings.TrimSpace(val)
	}
	parts := strings.SplitN(val, sep, 2)
	return strings.TrimSpace(parts[0])
}

// rawString fetches a value from the tag library's raw key/value map,
// trying each of keys in turn, and stringifies it
func rawString(m tag.Metadata, keys ...string) string {
	raw := m.Raw()
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return ""
}

func extFromMimeType(mimeType, fallbackExt string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	}
	if fallbackExt != "" {
		return strings.ToLower(fallbackExt)
	}
	return "jpeg"
}

// replayGainKeys lists the raw tag keys to try for each ReplayGain field,
// across the three formats spec §4.A names (ID3v2 TXXX frames surface under
// their description string once read via dhowden/tag's raw map, Vorbis
// comments keep their field name verbatim, and Apple's iTunes freeform atoms
// show up under the bare field name too)
var replayGainKeys = map[string][]string{
	"track_gain": {"REPLAYGAIN_TRACK_GAIN", "replaygain_track_gain"},
	"track_peak": {"REPLAYGAIN_TRACK_PEAK", "replaygain_track_peak"},
	"album_gain": {"REPLAYGAIN_ALBUM_GAIN", "replaygain_album_gain"},
	"album_peak": {"REPLAYGAIN_ALBUM_PEAK", "replaygain_album_peak"},
}

func readReplayGain(m tag.Metadata) ReplayGain {
	raw := m.Raw()
	get := func(field string) *float64 {
		for _, key := range replayGainKeys[field] {
			if v, ok := raw[key]; ok {
				if f, ok := parseReplayGainValue(fmt.Sprintf("%v", v)); ok {
					return &f
				}
			}
		}
		return nil
	}
	return ReplayGain{
		TrackGain: get("track_gain"),
		TrackPeak: get("track_peak"),
		AlbumGain: get("album_gain"),
		AlbumPeak: get("album_peak"),
	}
}

// parseReplayGainValue parses both the dB-suffixed gain form ("-8.50 dB")
// and the bare peak form ("0.950000")
func parseReplayGainValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(s, "dB")), " ")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// externalCoverCandidates returns the sibling image filenames (in priority
// order, tie-broken by first match) that could serve as external cover art
// for an audio file at audioPath: cover, folder, or the same basename as the
// audio file, each with a .jpg, .jpeg or .png extension. Other image
// extensions (cover.gif, folder.webp, ...) are not considered
func externalCoverCandidates(audioPath string) []string {
	dir := filepath.Dir(audioPath)
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	exts := []string{".jpg", ".jpeg", ".png"}

	var names []string
	for _, stem := range []string{"cover", "folder"} {
		for _, ext := range exts {
			names = append(names, filepath.Join(dir, stem+ext))
		}
	}
	for _, ext := range exts {
		names = append(names, filepath.Join(dir, base+ext))
	}
	return names
}

// findExternalCover returns the path of the first existing sibling image
// file that qualifies as external cover art, or "" if none exists
func findExternalCover(audioPath string) string {
	for _, candidate := range externalCoverCandidates(audioPath) {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// externalLyricsPath returns the path of the sidecar .lrc file for an audio
// file, regardless of whether it exists
func externalLyricsPath(audioPath string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	return base + ".lrc"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// wrapTagErr is a small helper mirroring the teacher's errors.Wrapf + skip
// pattern for per-file failures during a scan
func wrapTagErr(err error, path string) error {
	return errors.Wrapf(err, "skipping '%s'", path)
}
