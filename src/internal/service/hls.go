package service

import (
	"context"
	"io"
	"path/filepath"

	"github.com/mipimipi/euterpe/src/internal/catalog"
	"github.com/mipimipi/euterpe/src/internal/transcode"
)

// GetHLSPlaylist builds the HLS media playlist for songID, transcoded to
// format at maxBitrateKbps, cut into segments of the configured default
// length (spec §4.H, HLS)
func (s *Service) GetHLSPlaylist(songID catalog.ID, format string, maxBitrateKbps int) (string, error) {
	song, err := s.Catalog.Current().GetSong(songID)
	if err != nil {
		return "", err
	}

	segDur := s.Cfg.Transcode.DefaultSegmentDurationSec
	bitrate := maxBitrateKbps
	if bitrate == 0 {
		bitrate = song.Bitrate
	}
	return transcode.BuildHLSPlaylist(string(songID), song.Duration, bitrate, format, segDur), nil
}

// TranscodeHLSSegment transcodes the index-th segment of songID into format
// at maxBitrateKbps, using the never-cached HLS pipeline. The caller owns
// the returned reader and must Close it
func (s *Service) TranscodeHLSSegment(ctx context.Context, songID catalog.ID, index int, format string, maxBitrateKbps int) (io.ReadCloser, error) {
	song, err := s.Catalog.Current().GetSong(songID)
	if err != nil {
		return nil, err
	}

	segDur := s.Cfg.Transcode.DefaultSegmentDurationSec
	req := transcode.Request{
		SourcePath:     filepath.Join(s.Cfg.MusicFolderPath, song.Path),
		Format:         format,
		MaxBitrateKbps: maxBitrateKbps,
		TimeOffsetSec:  index * segDur,
	}
	return s.HLSTranscoder.TranscodeSegment(ctx, req, segDur)
}
