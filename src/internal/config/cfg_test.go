package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeCfgFile(t *testing.T, dir string, cfg Cfg) string {
	t.Helper()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	musicDir := t.TempDir()
	cfgDir := t.TempDir()
	path := writeCfgFile(t, cfgDir, Cfg{MusicFolderPath: musicDir})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("got LogLevel %q, want info", cfg.LogLevel)
	}
	if cfg.Scan.Separator != ";" {
		t.Errorf("got Separator %q, want ;", cfg.Scan.Separator)
	}
	if cfg.Transcode.MaxConcurrentEncoders != 5 {
		t.Errorf("got MaxConcurrentEncoders %d, want 5", cfg.Transcode.MaxConcurrentEncoders)
	}
	if cfg.Transcode.DefaultSegmentDurationSec != 10 {
		t.Errorf("got DefaultSegmentDurationSec %d, want 10", cfg.Transcode.DefaultSegmentDurationSec)
	}
	if cfg.Scan.MaxConcurrentReplayGainAnalyses != 1 {
		t.Errorf("got MaxConcurrentReplayGainAnalyses %d, want 1", cfg.Scan.MaxConcurrentReplayGainAnalyses)
	}
}

func TestLoadRejectsMissingMusicFolder(t *testing.T) {
	cfgDir := t.TempDir()
	path := writeCfgFile(t, cfgDir, Cfg{MusicFolderPath: filepath.Join(cfgDir, "nope")})

	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to fail for a nonexistent music folder")
	}
}

func TestLoadOverlaysFromEnvironment(t *testing.T) {
	musicDir := t.TempDir()
	cfgDir := t.TempDir()
	path := writeCfgFile(t, cfgDir, Cfg{MusicFolderPath: musicDir})

	t.Setenv("EUTERPE_LOG_LEVEL", "debug")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("got LogLevel %q, want debug (from env overlay)", cfg.LogLevel)
	}
}

func TestValidateRejectsZeroConcurrency(t *testing.T) {
	musicDir := t.TempDir()
	cfg := Cfg{
		MusicFolderPath: musicDir,
		Transcode:       TranscodeCfg{MaxConcurrentEncoders: 0},
		Scan:            ScanCfg{MaxConcurrentReplayGainAnalyses: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject MaxConcurrentEncoders=0")
	}
}

func TestContentTypeForSuffixAndIsSupportedAudioSuffix(t *testing.T) {
	if got := ContentTypeForSuffix("MP3"); got != "audio/mpeg" {
		t.Errorf("got %q, want audio/mpeg", got)
	}
	if got := ContentTypeForSuffix("xyz"); got != "application/octet-stream" {
		t.Errorf("got %q, want application/octet-stream", got)
	}
	if !IsSupportedAudioSuffix("flac") {
		t.Error("expected flac to be a supported audio suffix")
	}
	if IsSupportedAudioSuffix("txt") {
		t.Error("expected txt to not be a supported audio suffix")
	}
}
