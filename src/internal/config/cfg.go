// Package config reads, overlays and validates the euterpe configuration.
package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ValueKey is the type of keys used to carry config values in a context.Context
type ValueKey string

// KeyCfg is the context key for the euterpe configuration
const KeyCfg ValueKey = "cfg"

// SupportedAudioSuffixes are the (lower-case, dot-stripped) file suffixes
// that the scanner treats as audio files
var SupportedAudioSuffixes = map[string]bool{
	"mp3": true, "flac": true, "m4a": true, "ogg": true,
	"opus": true, "wav": true, "aac": true, "wma": true,
}

// contentTypes maps a lower-case, dot-stripped audio suffix to its media type
var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"ogg":  "audio/ogg",
	"opus": "audio/opus",
	"wav":  "audio/wav",
	"aac":  "audio/aac",
	"wma":  "audio/x-ms-wma",
}

// ContentTypeForSuffix returns the media type for an audio suffix (lower
// case, no dot). Unknown suffixes map to application/octet-stream
func ContentTypeForSuffix(suffix string) string {
	if ct, ok := contentTypes[strings.ToLower(suffix)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsSupportedAudioSuffix tells whether suffix (lower case, no dot) is an
// audio suffix the scanner recognizes
func IsSupportedAudioSuffix(suffix string) bool {
	return SupportedAudioSuffixes[strings.ToLower(suffix)]
}

// Cfg stores the euterpe configuration
type Cfg struct {
	// MusicFolderPath is the root of the music tree the scanner walks
	MusicFolderPath string `json:"music_folder_path"`
	// CachePath is the directory for the scan record, cover-art cache and
	// transcoding cache. Empty disables on-disk caching
	CachePath string `json:"cache_path"`
	// AuthToken is an opaque bearer token; euterpe does not interpret it
	AuthToken string `json:"auth_token"`
	// LogDir is the directory the log file is written to
	LogDir string `json:"log_dir"`
	// LogLevel is a logrus level name
	LogLevel string `json:"log_level"`

	Scan      ScanCfg      `json:"scan"`
	Transcode TranscodeCfg `json:"transcode"`
}

// ScanCfg holds the scanner-related part of the configuration
type ScanCfg struct {
	// EnableTranscodingCache is loaded from the config file and the
	// EUTERPE_ENABLE_TRANSCODING_CACHE overlay but is not consulted: the
	// whole-file transcoder built by service.New always uses its cache
	EnableTranscodingCache bool `json:"enable_transcoding_cache"`
	// CacheRefreshIntervalHours is a hint; not used directly by the core
	CacheRefreshIntervalHours int `json:"cache_refresh_interval_hours"`
	// ComputeMissingReplayGain enables the ReplayGain analysis pool for
	// songs whose track gain is missing after tag parsing
	ComputeMissingReplayGain bool `json:"compute_missing_replay_gain"`
	// MaxConcurrentReplayGainAnalyses bounds the ReplayGain worker pool
	MaxConcurrentReplayGainAnalyses int `json:"max_concurrent_replaygain_analyses"`
	// Separator splits multi-value tag fields (e.g. "Rock; Metal")
	Separator string `json:"separator"`
}

// TranscodeCfg holds the transcoding-pipeline part of the configuration
type TranscodeCfg struct {
	// EncoderPath is the path to the external encoder binary (ffmpeg-compatible CLI)
	EncoderPath string `json:"encoder_path"`
	// MaxConcurrentEncoders bounds the admission semaphore (§4.H step 2)
	MaxConcurrentEncoders int `json:"max_concurrent_encoders"`
	// DefaultSegmentDurationSec is the HLS segment length used when none is given
	DefaultSegmentDurationSec int `json:"default_segment_duration_sec"`
}

// defaults applies the same fallbacks the teacher's config.Load would
// encode as zero-value-safe constants
func (c *Cfg) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Scan.Separator == "" {
		c.Scan.Separator = ";"
	}
	if c.Scan.MaxConcurrentReplayGainAnalyses <= 0 {
		c.Scan.MaxConcurrentReplayGainAnalyses = 1
	}
	if c.Transcode.MaxConcurrentEncoders <= 0 {
		c.Transcode.MaxConcurrentEncoders = 5
	}
	if c.Transcode.DefaultSegmentDurationSec <= 0 {
		c.Transcode.DefaultSegmentDurationSec = 10
	}
}

// Load reads the configuration file at path, overlays any EUTERPE_*
// environment variables (optionally sourced from a .env file next to it),
// applies defaults and validates the result
func Load(path string) (cfg Cfg, err error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be read", path)
	}
	if err = json.Unmarshal(raw, &cfg); err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be parsed", path)
	}

	// .env overlay is optional: a missing file is not an error
	_ = godotenv.Load(envFileNextTo(path))
	overlayFromEnv(&cfg)

	cfg.defaults()

	if err = cfg.Validate(); err != nil {
		return Cfg{}, errors.Wrap(err, "configuration is invalid")
	}
	return cfg, nil
}

func envFileNextTo(cfgPath string) string {
	dir := cfgPath
	if idx := strings.LastIndexByte(cfgPath, '/'); idx >= 0 {
		dir = cfgPath[:idx]
	} else {
		dir = "."
	}
	return dir + "/.env"
}

// overlayFromEnv applies EUTERPE_* environment variables on top of cfg,
// using cast for forgiving string -> typed conversion
func overlayFromEnv(cfg *Cfg) {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	b := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = cast.ToBool(v)
		}
	}
	i := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = cast.ToInt(v)
		}
	}

	str("EUTERPE_MUSIC_FOLDER_PATH", &cfg.MusicFolderPath)
	str("EUTERPE_CACHE_PATH", &cfg.CachePath)
	str("EUTERPE_AUTH_TOKEN", &cfg.AuthToken)
	str("EUTERPE_LOG_DIR", &cfg.LogDir)
	str("EUTERPE_LOG_LEVEL", &cfg.LogLevel)
	b("EUTERPE_ENABLE_TRANSCODING_CACHE", &cfg.Scan.EnableTranscodingCache)
	i("EUTERPE_CACHE_REFRESH_INTERVAL_HOURS", &cfg.Scan.CacheRefreshIntervalHours)
	b("EUTERPE_COMPUTE_MISSING_REPLAYGAIN", &cfg.Scan.ComputeMissingReplayGain)
	i("EUTERPE_MAX_CONCURRENT_REPLAYGAIN_ANALYSES", &cfg.Scan.MaxConcurrentReplayGainAnalyses)
	str("EUTERPE_ENCODER_PATH", &cfg.Transcode.EncoderPath)
	i("EUTERPE_MAX_CONCURRENT_ENCODERS", &cfg.Transcode.MaxConcurrentEncoders)
}

// Validate checks that the configuration is complete and correct
func (c *Cfg) Validate() (err error) {
	if err = validateDir(c.MusicFolderPath, "music_folder_path"); err != nil {
		return
	}
	if c.CachePath != "" {
		if err = validateDir(c.CachePath, "cache_path"); err != nil {
			return
		}
	}
	if c.Transcode.MaxConcurrentEncoders < 1 {
		return fmt.Errorf("max_concurrent_encoders must be >= 1")
	}
	if c.Scan.MaxConcurrentReplayGainAnalyses < 1 {
		return fmt.Errorf("max_concurrent_replaygain_analyses must be >= 1")
	}
	return nil
}

func validateDir(dir, name string) error {
	if dir == "" {
		return fmt.Errorf("no %s configured", name)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "%s '%s' doesn't exist", name, dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s '%s' is not a directory", name, dir)
	}
	return nil
}

// Test reads and validates the configuration file at path, for the CLI's
// `test` subcommand
func Test(path string) (err error) {
	if _, err = Load(path); err != nil {
		return err
	}
	fmt.Println("Congrats: the euterpe configuration is complete and consistent :)")
	return nil
}
