package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mipimipi/euterpe/src/internal/config"
	"github.com/pkg/errors"
)

// Scanner walks the music folder, diffs it against the last persisted
// ScanRecord, re-parses only what changed, and publishes a freshly
// assembled Snapshot to a Catalog (spec §4.F)
type Scanner struct {
	cat         *Catalog
	musicFolder string
	cacheDir    string
	separator   string

	// sema coalesces concurrent triggers into a single in-flight scan via
	// try-lock rather than a queue (spec §4.F: "a trigger that arrives while
	// a scan is running is coalesced, not queued"), mirroring the teacher
	// scanner's one-slot semaphore channel
	sema chan struct{}

	mu       sync.Mutex
	progress ScanProgress
}

// ScanProgress is a snapshot of an in-flight (or just-finished) scan's
// progress, for the stats/status surface
type ScanProgress struct {
	Running bool
	Done    int
	Total   int
	ETA     time.Duration
}

// NewScanner creates a Scanner that publishes into cat
func NewScanner(cat *Catalog, musicFolder, cacheDir, separator string) *Scanner {
	return &Scanner{
		cat:         cat,
		musicFolder: musicFolder,
		cacheDir:    cacheDir,
		separator:   separator,
		sema:        make(chan struct{}, 1),
	}
}

// Progress returns the current scan progress
func (sc *Scanner) Progress() ScanProgress {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.progress
}

// Trigger runs a scan unless one is already in progress, in which case it
// returns immediately with coalesced=true and does not queue a follow-up
// (spec §4.F)
func (sc *Scanner) Trigger(ctx context.Context) (coalesced bool, err error) {
	select {
	case sc.sema <- struct{}{}:
	default:
		return true, nil
	}
	defer func() { <-sc.sema }()

	return false, sc.scanOnce(ctx)
}

func (sc *Scanner) setProgress(p ScanProgress) {
	sc.mu.Lock()
	sc.progress = p
	sc.mu.Unlock()
}

// scanOnce performs one full scan-diff-assemble-publish cycle
func (sc *Scanner) scanOnce(ctx context.Context) error {
	log.Trace("scanning ...")
	start := time.Now()

	prior := LoadScanRecord(sc.cacheDir)
	priorByPath := map[string]FileRecord{}
	for _, f := range prior.Files {
		priorByPath[f.Path] = f
	}

	audioFiles, playlistFiles, err := walkMusicFolder(sc.musicFolder)
	if err != nil {
		return errors.Wrapf(err, "cannot walk music folder '%s'", sc.musicFolder)
	}

	current := make([]FileRecord, 0, len(audioFiles))
	for _, path := range audioFiles {
		rel, _ := filepath.Rel(sc.musicFolder, path)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current = append(current, FileRecord{Path: rel, Size: info.Size(), LastWrite: info.ModTime(), Created: fileCreatedTime(info)})
	}
	sort.Slice(current, func(i, j int) bool { return current[i].Path < current[j].Path })

	d := diffFileRecords(prior.Files, current)

	delSet := map[string]bool{}
	for _, f := range d.Del {
		delSet[f.Path] = true
	}
	addSet := map[string]bool{}
	for _, f := range d.Add {
		addSet[f.Path] = true
	}

	total := len(current)
	done := 0
	sc.setProgress(ScanProgress{Running: true, Total: total})

	var songs []*Song
	resultFiles := make([]FileRecord, 0, len(current))
	for _, rec := range current {
		if addSet[rec.Path] {
			abs := filepath.Join(sc.musicFolder, rec.Path)
			song, perr := parseSong(abs, rec.Path, rec, sc.separator)
			done++
			sc.reportProgress(start, done, total)
			if perr != nil {
				log.Warnf("%v", wrapTagErr(perr, abs))
				continue
			}
			songs = append(songs, song)
			rec.Song = song
			resultFiles = append(resultFiles, rec)
			continue
		}
		if prev, ok := priorByPath[rec.Path]; ok && prev.Song != nil && !delSet[rec.Path] {
			songs = append(songs, prev.Song)
			rec.Song = prev.Song
			resultFiles = append(resultFiles, rec)
			done++
			sc.reportProgress(start, done, total)
		}
	}

	playlists, invalidPlaylists, missing := sc.loadPlaylists(playlistFiles, songs)

	snap := buildSnapshot(sc.musicFolder, songs, playlists, invalidPlaylists, missing)
	sc.cat.publish(snap)

	rec := ScanRecord{Files: resultFiles, MissingPlaylists: missing, InvalidPlaylists: invalidPlaylists, LastScanFinished: time.Now()}
	if err := SaveScanRecord(sc.cacheDir, rec); err != nil {
		log.Warnf("%v", errors.Wrap(err, "cannot persist scan record"))
	}

	sc.setProgress(ScanProgress{Running: false, Done: total, Total: total})
	log.Trace("scan done")
	return nil
}

// reportProgress updates the in-flight progress, estimating ETA as
// elapsed*(total-done)/done once at least one file has been processed
// (decided in SPEC_FULL.md §13 - no meaningful ETA exists before that)
func (sc *Scanner) reportProgress(start time.Time, done, total int) {
	var eta time.Duration
	if done > 0 {
		elapsed := time.Since(start)
		eta = elapsed * time.Duration(total-done) / time.Duration(done)
	}
	sc.setProgress(ScanProgress{Running: true, Done: done, Total: total, ETA: eta})
}

// parseSong reads tags from an audio file and turns them into a Song,
// deriving every ID via the spec §4.B table
func parseSong(absPath, relPath string, rec FileRecord, separator string) (*Song, error) {
	ps, err := ReadTags(absPath, separator)
	if err != nil {
		return nil, err
	}

	song := &Song{
		ID:          CreateSongID(relPath, rec.LastWrite),
		Path:        relPath,
		Title:       ps.Title,
		Artist:      ps.Artist,
		AlbumArtist: ps.AlbumArtist,
		Album:       ps.Album,
		Genre:       ps.Genre,
		TrackNo:     ps.TrackNo,
		Year:        ps.Year,
		Duration:    ps.Duration,
		Bitrate:     ps.Bitrate,
		ISRC:        ps.ISRC,
		ReplayGain:  ps.ReplayGain,
		Size:        rec.Size,
		Created:     rec.Created,
		LastWrite:   rec.LastWrite,
	}
	if song.Title == "" {
		song.Title = strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
	}

	if len(ps.EmbeddedCover) > 0 {
		song.CoverID = CreateCoverID(relPath)
		song.Cover = &CoverArt{SourcePath: relPath, Embedded: true, ModTime: rec.LastWrite}
	} else if cover := findExternalCover(absPath); cover != "" {
		coverRel, _ := filepath.Rel(filepath.Dir(absPath), cover)
		coverPath := filepath.Join(filepath.Dir(relPath), coverRel)
		song.CoverID = CreateCoverID(coverPath)
		modTime := rec.LastWrite
		if info, err := os.Stat(cover); err == nil {
			modTime = info.ModTime()
		}
		song.Cover = &CoverArt{SourcePath: coverPath, Embedded: false, ModTime: modTime}
	}

	if fileExists(externalLyricsPath(absPath)) {
		lyricsPath := strings.TrimSuffix(relPath, filepath.Ext(relPath)) + ".lrc"
		song.LyricsID = CreateLyricsID(lyricsPath)
		song.Lyrics = &Lyrics{SourcePath: lyricsPath, Embedded: false}
	} else if ps.EmbeddedLyrics != "" {
		song.LyricsID = CreateLyricsID(relPath)
		song.Lyrics = &Lyrics{SourcePath: relPath, Embedded: true}
	}

	return song, nil
}

// walkMusicFolder returns the sorted list of absolute audio-file paths and
// playlist-file paths (xspf, m3u, m3u8) under root
func walkMusicFolder(root string) (audio, playlists []string, err error) {
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		switch {
		case config.IsSupportedAudioSuffix(suffix):
			audio = append(audio, path)
		case suffix == "xspf" || IsLegacyPlaylist(suffix):
			playlists = append(playlists, path)
		}
		return nil
	})
	sort.Strings(audio)
	sort.Strings(playlists)
	return audio, playlists, err
}

// loadPlaylists converts any remaining legacy M3U files, then parses every
// XSPF file under the music folder into a Playlist, resolving each track
// location to a known song and recording unresolved ones
func (sc *Scanner) loadPlaylists(playlistFiles []string, songs []*Song) (playlists []*Playlist, invalid []InvalidPlaylist, missing []MissingPlaylistItem) {
	songByPath := map[string]*Song{}
	for _, s := range songs {
		songByPath[s.Path] = s
	}

	xspfPaths := make([]string, 0, len(playlistFiles))
	for _, path := range playlistFiles {
		suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if IsLegacyPlaylist(suffix) {
			xspfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".xspf"
			if err := ConvertM3UToXSPF(path, xspfPath); err != nil {
				invalid = append(invalid, InvalidPlaylist{Path: path, Cause: err.Error()})
				continue
			}
			xspfPaths = append(xspfPaths, xspfPath)
			continue
		}
		xspfPaths = append(xspfPaths, path)
	}

	for _, path := range xspfPaths {
		rel, _ := filepath.Rel(sc.musicFolder, path)
		parsed, err := ParseXSPF(path)
		if err != nil {
			invalid = append(invalid, InvalidPlaylist{Path: rel, Cause: err.Error()})
			continue
		}
		id := CreatePlaylistID(rel)
		name := parsed.Title
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		}
		pl := &Playlist{ID: id, Path: rel, Name: name, Extension: parsed.OtherExtXML}
		for _, t := range parsed.Tracks {
			addedAt := t.AddedAt
			if !t.HasAddedAt {
				addedAt = time.Now()
			}
			songRel, ok := SongPathFromLocation(path, sc.musicFolder, t.Location)
			if ok {
				if song, ok := songByPath[songRel]; ok {
					trackAddedAt := song.LastWrite
					if t.HasAddedAt {
						trackAddedAt = t.AddedAt
					}
					pl.Tracks = append(pl.Tracks, PlaylistTrack{SongID: song.ID, AddedAt: trackAddedAt, Extension: t.OtherExtXML})
					continue
				}
			}
			missing = append(missing, MissingPlaylistItem{PlaylistID: id, Path: t.Location, Title: t.Title, AddedAt: addedAt})
		}
		playlists = append(playlists, pl)
	}
	return
}
