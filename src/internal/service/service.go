// Package service wires the catalog, cover-art cache and transcoding
// pipeline together into euterpe's main control loop, the way the teacher's
// internal/server package wires content and UPnP together - minus the
// protocol adapter, which is out of scope here (spec §1: "no REST/HTTP
// surface, no UPnP, no Subsonic-compatible API").
package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	l "github.com/sirupsen/logrus"
	"github.com/pkg/errors"

	"github.com/mipimipi/euterpe/src/internal/catalog"
	"github.com/mipimipi/euterpe/src/internal/config"
	"github.com/mipimipi/euterpe/src/internal/coverart"
	"github.com/mipimipi/euterpe/src/internal/transcode"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "service"})

const scanInterval = time.Hour

// Service bundles the core components a caller (CLI command, or a future
// protocol adapter) needs to serve the catalog
type Service struct {
	Catalog    *catalog.Catalog
	Scanner    *catalog.Scanner
	Mutator    *catalog.Mutator
	CoverCache *coverart.Cache
	// Transcoder serves whole-file transcodes and is cache-backed (spec §4.H)
	Transcoder *transcode.Pipeline
	// HLSTranscoder serves HLS segment transcodes; it uses the same encoder
	// binary and the same MaxConcurrentEncoders limit, but with a semaphore
	// of its own, separate from Transcoder's. It never touches the
	// transcoding cache, since each segment request carries its own -ss
	// offset and caching by (source, format, bitrate) alone would serve the
	// wrong slice to the next segment (spec §4.H, HLS)
	HLSTranscoder *transcode.Pipeline
	ReplayGain    *catalog.ReplayGainAnalyzer
	Cfg           config.Cfg
}

// New wires up a Service from a loaded, validated configuration
func New(cfg config.Cfg) *Service {
	cat := catalog.NewCatalog()
	cacheDir := cfg.CachePath
	return &Service{
		Catalog:       cat,
		Scanner:       catalog.NewScanner(cat, cfg.MusicFolderPath, cacheDir, cfg.Scan.Separator),
		Mutator:       catalog.NewMutator(cat, cfg.MusicFolderPath),
		CoverCache:    coverart.NewCache(cacheDir),
		Transcoder:    transcode.NewPipeline(cfg.Transcode.EncoderPath, cacheDir, cfg.Transcode.MaxConcurrentEncoders),
		HLSTranscoder: transcode.NewHLSPipeline(cfg.Transcode.EncoderPath, cfg.Transcode.MaxConcurrentEncoders),
		ReplayGain:    catalog.NewReplayGainAnalyzer("mp3gain", cfg.MusicFolderPath, cfg.Scan.MaxConcurrentReplayGainAnalyses),
		Cfg:           cfg,
	}
}

// Run implements euterpe's main control loop: initial scan, periodic
// rescans, and OS-signal-triggered shutdown. version is logged at startup
func Run(version string, cfg config.Cfg) error {
	if err := setupLogging(cfg.LogDir, cfg.LogLevel); err != nil {
		return errors.Wrap(err, "cannot run euterpe")
	}
	log.Tracef("running euterpe %s ...", version)

	svc := New(cfg)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), config.KeyCfg, cfg))
	defer cancel()

	if _, err := svc.Scanner.Trigger(ctx); err != nil {
		return errors.Wrap(err, "initial scan failed")
	}
	if cfg.Scan.ComputeMissingReplayGain {
		svc.ReplayGain.AnalyzeMissing(ctx, svc.Catalog.Current().AllSongs())
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for {
		select {
		case sig := <-interrupt:
			log.Tracef("signal received: %v", sig)
			log.Trace("stopping ...")
			cancel()
			wg.Wait()
			log.Trace("stopped")
			return nil

		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				coalesced, err := svc.Scanner.Trigger(ctx)
				if err != nil {
					log.Warnf("%v", errors.Wrap(err, "periodic scan failed"))
					return
				}
				if coalesced {
					log.Trace("periodic scan skipped: a scan is already running")
					return
				}
				if cfg.Scan.ComputeMissingReplayGain {
					svc.ReplayGain.AnalyzeMissing(ctx, svc.Catalog.Current().AllSongs())
				}
			}()

		case <-ctx.Done():
			wg.Wait()
			return nil
		}
	}
}
