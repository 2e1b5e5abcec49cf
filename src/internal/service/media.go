package service

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mipimipi/euterpe/src/internal/catalog"
)

// GetCoverArt returns the bytes and content type of the cover art resolved
// from id (a song, album, or bare cover ID), materializing the on-disk cache
// entry first if it's missing or stale (spec §4.G)
func (s *Service) GetCoverArt(id catalog.ID) ([]byte, string, error) {
	cover, err := s.Catalog.Current().ResolveCoverSource(id)
	if err != nil {
		return nil, "", err
	}

	coverID := string(catalog.CreateCoverID(cover.SourcePath))
	sourceModUnix := cover.ModTime.Unix()
	if s.CoverCache.Stale(coverID, sourceModUnix) {
		if err := s.materializeCover(coverID, cover); err != nil {
			return nil, "", err
		}
	}

	data, contentType, err := s.CoverCache.Get(coverID)
	if err != nil {
		return nil, "", &catalog.Error{Kind: catalog.KindTransient, Message: "cannot read cover cache", Cause: err}
	}
	return data, contentType, nil
}

// materializeCover copies cover bytes into the cache, either straight from
// an external sidecar image file or by re-reading the embedded picture out
// of the audio file's tags
func (s *Service) materializeCover(coverID string, cover *catalog.CoverArt) error {
	absSource := filepath.Join(s.Cfg.MusicFolderPath, cover.SourcePath)
	if !cover.Embedded {
		if err := s.CoverCache.CopyFromSource(coverID, absSource); err != nil {
			return &catalog.Error{Kind: catalog.KindTransient, Message: "cannot cache cover art", Cause: err}
		}
		return nil
	}

	ps, err := catalog.ReadTags(absSource, s.Cfg.Scan.Separator)
	if err != nil {
		return &catalog.Error{Kind: catalog.KindTransient, Message: "cannot re-read embedded cover", Cause: err}
	}
	if len(ps.EmbeddedCover) == 0 {
		return &catalog.Error{Kind: catalog.KindNotFound, Message: "embedded cover no longer present"}
	}
	if err := s.CoverCache.Put(coverID, ps.EmbeddedCover, cover.ModTime.Unix()); err != nil {
		return &catalog.Error{Kind: catalog.KindTransient, Message: "cannot cache embedded cover", Cause: err}
	}
	return nil
}

// GetLyrics returns the plain lyric text for songID, parsing the sidecar
// .lrc file or extracting the embedded USLT/lyrics tag on demand (spec
// §4.D). Lyrics aren't cached on disk: they're cheap to re-read and, unlike
// cover art, carry no separate content-type negotiation
func (s *Service) GetLyrics(songID catalog.ID) (string, error) {
	lyrics, err := s.Catalog.Current().ResolveLyricsSource(songID)
	if err != nil {
		return "", err
	}

	absSource := filepath.Join(s.Cfg.MusicFolderPath, lyrics.SourcePath)
	if !lyrics.Embedded {
		text, err := catalog.ReadLRCFile(absSource)
		if err != nil {
			if os.IsNotExist(err) {
				return "", &catalog.Error{Kind: catalog.KindNotFound, Message: "lyrics file no longer present"}
			}
			return "", &catalog.Error{Kind: catalog.KindTransient, Message: "cannot read lyrics file", Cause: err}
		}
		return text, nil
	}

	ps, err := catalog.ReadTags(absSource, s.Cfg.Scan.Separator)
	if err != nil {
		return "", &catalog.Error{Kind: catalog.KindTransient, Message: "cannot re-read embedded lyrics", Cause: errors.WithStack(err)}
	}
	if ps.EmbeddedLyrics == "" {
		return "", &catalog.Error{Kind: catalog.KindNotFound, Message: "embedded lyrics no longer present"}
	}
	return ps.EmbeddedLyrics, nil
}
