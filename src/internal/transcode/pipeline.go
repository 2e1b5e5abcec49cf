// Package transcode runs an external ffmpeg-compatible encoder under a
// bounded-concurrency admission gate and streams its stdout to the caller,
// teeing it into a content-addressed cache on a complete, successful read
// (spec §4.H).
package transcode

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "transcode"})

// Request describes one transcode: the source file, target format, optional
// bitrate cap, and optional seek offset. A non-zero TimeOffsetSec bypasses
// the cache (spec §4.H step 1: "only when timeOffset is 0 or unset")
type Request struct {
	SourcePath     string
	Format         string // "mp3", "opus", "ogg", "m4a", "flac", ...
	MaxBitrateKbps int
	TimeOffsetSec  int
}

func (r Request) effectiveFormat() string {
	f := normalizeFormat(r.Format)
	if _, ok := formatTable[f]; !ok {
		return "mp3"
	}
	return f
}

// CacheKey is the content-addressing key for a Request (spec §4.H step 1:
// "SHA256(sourcePath|format|maxBitrateKbps).hex + '.' + format")
func (r Request) CacheKey() string {
	f := r.effectiveFormat()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", r.SourcePath, f, r.MaxBitrateKbps)))
	return hex.EncodeToString(sum[:]) + "." + f
}

// formatEntry is one row of the format -> (muxer, codec) table
type formatEntry struct {
	muxer string
	codec string
}

var formatTable = map[string]formatEntry{
	"mp3":  {"mp3", "libmp3lame"},
	"opus": {"opus", "libopus"},
	"ogg":  {"ogg", "libvorbis"},
	"m4a":  {"ipod", "aac"},
	"flac": {"flac", "flac"},
}

func normalizeFormat(format string) string {
	if format == "" {
		return "mp3"
	}
	return format
}

// TranscoderUnavailable is returned when the encoder process fails to start
// (spec §4.H step 4)
type TranscoderUnavailable struct{ Cause error }

func (e *TranscoderUnavailable) Error() string { return fmt.Sprintf("transcoder unavailable: %v", e.Cause) }
func (e *TranscoderUnavailable) Unwrap() error { return e.Cause }

// Pipeline runs encoder processes under a bounded semaphore and caches their
// output under cacheDir
type Pipeline struct {
	encoderPath string
	cacheDir    string
	sema        chan struct{}
	cacheOn     bool
}

// NewPipeline creates a Pipeline that allows at most maxConcurrent encoder
// processes to run simultaneously (spec §4.H step 2: "admission control").
// Caching is enabled; NewHLSPipeline is used for HLS segments
func NewPipeline(encoderPath, cacheDir string, maxConcurrent int) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pipeline{encoderPath: encoderPath, cacheDir: cacheDir, sema: make(chan struct{}, maxConcurrent), cacheOn: true}
}

func (p *Pipeline) cachePath(key string) string {
	return filepath.Join(p.cacheDir, key)
}

// Transcode returns a reader over the transcoded output for req, serving a
// cache hit directly or running the encoder and streaming a miss. Cancelling
// ctx kills the encoder's process group, deletes the temp file, and releases
// the semaphore (spec §4.H step 7)
func (p *Pipeline) Transcode(ctx context.Context, req Request) (io.ReadCloser, error) {
	cacheable := p.cacheOn && req.TimeOffsetSec == 0
	key := req.CacheKey()

	if cacheable {
		if f, err := os.Open(p.cachePath(key)); err == nil {
			return f, nil
		}
	}

	select {
	case p.sema <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if cacheable {
		if f, err := os.Open(p.cachePath(key)); err == nil {
			<-p.sema
			return f, nil
		}
	}

	return p.spawn(ctx, req, key, cacheable)
}

// buildArgs constructs the ffmpeg-compatible argument list per the spec's
// codec/muxer/bitrate table (spec §4.H step 3)
func buildArgs(req Request, extraOutputArgs ...string) []string {
	format := req.effectiveFormat()
	entry := formatTable[format]

	args := []string{"-hide_banner", "-loglevel", "error"}
	if req.TimeOffsetSec > 0 {
		args = append(args, "-ss", fmt.Sprintf("%d", req.TimeOffsetSec))
	}
	args = append(args, "-i", req.SourcePath)
	args = append(args, "-vn", "-sn", "-map_metadata", "0", "-map", "0:a:0")
	args = append(args, "-codec:a", entry.codec)

	switch {
	case req.MaxBitrateKbps > 0:
		args = append(args, "-b:a", fmt.Sprintf("%dk", req.MaxBitrateKbps))
	case format == "mp3":
		args = append(args, "-q:a", "2")
	case format == "opus":
		args = append(args, "-b:a", "128k")
	}

	args = append(args, extraOutputArgs...)
	args = append(args, "-f", entry.muxer, "pipe:1")
	return args
}

// spawn starts the encoder and wraps its stdout in a streamReader
func (p *Pipeline) spawn(ctx context.Context, req Request, key string, cacheable bool) (io.ReadCloser, error) {
	args := buildArgs(req)

	cmd := exec.Command(p.encoderPath, args...)
	cmd.SysProcAttr = newProcessGroupAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}

	if err := cmd.Start(); err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}

	go drainStderr(stderr)

	var tmpPath, finalPath string
	var tmpFile *os.File
	if cacheable {
		if err := os.MkdirAll(p.cacheDir, 0o755); err == nil {
			finalPath = p.cachePath(key)
			tmpPath = finalPath + ".tmp"
			tmpFile, _ = os.Create(tmpPath)
		}
	}

	sr := &streamReader{
		cmd:      cmd,
		stdout:   stdout,
		tmpFile:  tmpFile,
		tmpPath:  tmpPath,
		finalPath: finalPath,
		release:  p.releaseOnce(),
	}
	context.AfterFunc(ctx, sr.cancel)
	return sr, nil
}

func (p *Pipeline) releaseOnce() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.sema }) }
}

// drainStderr consumes the encoder's stderr concurrently so it never applies
// backpressure to the process, logging each line at debug level (spec §4.H
// step 6)
func drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		log.Debug(sc.Text())
	}
}

// streamReader wraps an in-flight encoder's stdout. It owns the child
// process, a temp file handle, and a "complete" flag; Close is idempotent
// and releases its semaphore slot exactly once regardless of read
// completion (spec §4.H step 5, design note §9: "scoped acquisition and a
// guaranteed-release finalizer on all exit paths")
type streamReader struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	tmpFile   *os.File
	tmpPath   string
	finalPath string
	release   func()

	mu        sync.Mutex
	complete  bool
	closed    bool
	cancelled bool
}

func (sr *streamReader) Read(buf []byte) (int, error) {
	n, err := sr.stdout.Read(buf)
	if n > 0 && sr.tmpFile != nil {
		if _, werr := sr.tmpFile.Write(buf[:n]); werr != nil {
			// tee errors abort caching silently but do not fail the read
			// (spec §4.H step 5)
			sr.tmpFile.Close()
			os.Remove(sr.tmpPath)
			sr.tmpFile = nil
		}
	}
	if err == io.EOF {
		sr.mu.Lock()
		sr.complete = true
		sr.mu.Unlock()
	}
	return n, err
}

// cancel is invoked when the caller's context is done: kill the process
// tree, delete the temp file, release the semaphore (spec §4.H step 7)
func (sr *streamReader) cancel() {
	sr.mu.Lock()
	sr.cancelled = true
	sr.mu.Unlock()
	sr.Close()
}

// Close finalizes the stream: on a complete read, the temp file is promoted
// into the cache; otherwise it's removed. The child process tree is killed
// if still running, and the semaphore slot is released exactly once
func (sr *streamReader) Close() error {
	sr.mu.Lock()
	if sr.closed {
		sr.mu.Unlock()
		return nil
	}
	sr.closed = true
	complete := sr.complete && !sr.cancelled
	sr.mu.Unlock()

	defer sr.release()
	defer killProcessGroup(sr.cmd)
	defer sr.stdout.Close()

	if sr.tmpFile != nil {
		sr.tmpFile.Close()
		if complete {
			if err := os.Rename(sr.tmpPath, sr.finalPath); err != nil {
				os.Remove(sr.tmpPath)
			}
		} else {
			os.Remove(sr.tmpPath)
		}
	}

	killProcessGroup(sr.cmd)
	_ = sr.cmd.Wait()
	return nil
}

// NewHLSPipeline creates a Pipeline for segment transcoding: segments are
// never cached (spec §4.H: "Cache is not used for segments")
func NewHLSPipeline(encoderPath string, maxConcurrent int) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pipeline{encoderPath: encoderPath, sema: make(chan struct{}, maxConcurrent), cacheOn: false}
}

// TranscodeSegment runs the same encoder contract as Transcode, but bounds
// the output to segmentDurationSec with "-t" (spec: "HLS segment
// transcoding")
func (p *Pipeline) TranscodeSegment(ctx context.Context, req Request, segmentDurationSec int) (io.ReadCloser, error) {
	select {
	case p.sema <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	args := buildArgs(req, "-t", fmt.Sprintf("%d", segmentDurationSec))
	cmd := exec.Command(p.encoderPath, args...)
	cmd.SysProcAttr = newProcessGroupAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}
	if err := cmd.Start(); err != nil {
		<-p.sema
		return nil, &TranscoderUnavailable{Cause: err}
	}
	go drainStderr(stderr)

	sr := &streamReader{cmd: cmd, stdout: stdout, release: p.releaseOnce()}
	context.AfterFunc(ctx, sr.cancel)
	return sr, nil
}
