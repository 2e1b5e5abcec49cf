package catalog

import (
	"bufio"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ReplayGainAnalyzer runs an external mp3gain-compatible analyzer, grouped
// by album the same way as a standalone ReplayGain batch tool would, and
// reports the results back for songs whose tags carried no track gain
type ReplayGainAnalyzer struct {
	binaryPath    string
	musicFolder   string
	maxConcurrent int
}

// NewReplayGainAnalyzer creates an analyzer bounded to maxConcurrent
// simultaneous external processes (spec §4.F's "bounded-concurrency pool
// running an external analyzer")
func NewReplayGainAnalyzer(binaryPath, musicFolder string, maxConcurrent int) *ReplayGainAnalyzer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ReplayGainAnalyzer{binaryPath: binaryPath, musicFolder: musicFolder, maxConcurrent: maxConcurrent}
}

// AnalyzeMissing runs the analyzer over every album that has at least one
// song without a track gain, mutating those songs' ReplayGain in place.
// Albums are analyzed together, since ReplayGain's album-gain figure only
// makes sense computed across all of an album's tracks at once
func (a *ReplayGainAnalyzer) AnalyzeMissing(ctx context.Context, songs []*Song) {
	byAlbum := map[ID][]*Song{}
	for _, s := range songs {
		if s.ReplayGain.TrackGain == nil {
			byAlbum[s.AlbumID] = append(byAlbum[s.AlbumID], s)
		}
	}
	if len(byAlbum) == 0 {
		return
	}

	sema := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup
	for _, albumSongs := range byAlbum {
		albumSongs := albumSongs
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sema <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sema }()
			if err := a.analyzeAlbum(ctx, albumSongs); err != nil {
				log.Warnf("%v", errors.Wrap(err, "replaygain analysis failed"))
			}
		}()
	}
	wg.Wait()
}

// analyzeAlbum invokes the analyzer binary over one album's files and
// parses its "Recommended" gain/peak lines, mirroring mp3gain's text output
func (a *ReplayGainAnalyzer) analyzeAlbum(ctx context.Context, songs []*Song) error {
	paths := make([]string, 0, len(songs))
	for _, s := range songs {
		paths = append(paths, filepath.Join(a.musicFolder, s.Path))
	}

	cmd := exec.CommandContext(ctx, a.binaryPath, append([]string{"-s", "a"}, paths...)...)
	out, err := cmd.Output()
	if err != nil {
		return errors.Wrapf(err, "cannot run replaygain analyzer on album with %d tracks", len(songs))
	}

	results := parseGainOutput(string(out))
	for _, s := range songs {
		base := filepath.Base(s.Path)
		if r, ok := results[base]; ok {
			s.ReplayGain = r
		}
	}
	return nil
}

// parseGainOutput parses lines of the form "trackname.mp3\tGain: -6.50 dB\tPeak: 0.95"
// into a per-filename ReplayGain map. The exact textual shape is analyzer-
// specific; this covers the common tab-separated mp3gain report format
func parseGainOutput(output string) map[string]ReplayGain {
	results := map[string]ReplayGain{}
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		name := filepath.Base(strings.TrimSpace(fields[0]))
		gain, gok := parseReplayGainValue(strings.TrimPrefix(strings.TrimSpace(fields[1]), "Gain:"))
		peak, pok := parseReplayGainValue(strings.TrimPrefix(strings.TrimSpace(fields[2]), "Peak:"))
		if !gok && !pok {
			continue
		}
		rg := ReplayGain{}
		if gok {
			rg.TrackGain = &gain
		}
		if pok {
			rg.TrackPeak = &peak
		}
		results[name] = rg
	}
	return results
}
