// Package coverart serves and caches cover-art images resolved by the
// catalog, without ever decoding or resizing them (spec §4.G: image
// resizing is explicitly out of scope).
package coverart

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "coverart"})

// Cache serves cover-art bytes from a content-addressed on-disk cache,
// populated lazily from whatever source (embedded tag picture or external
// sidecar image) the catalog resolved for a given cover ID
type Cache struct {
	cacheDir string
}

// NewCache creates a Cache rooted at cacheDir. cacheDir is created lazily on
// first write
func NewCache(cacheDir string) *Cache {
	return &Cache{cacheDir: cacheDir}
}

// path returns the cache file for coverID, named by the cover ID alone with
// no extension (spec §6: "Cover-art cache: ... Files named by cover ID, no
// extension")
func (c *Cache) path(coverID string) string {
	return filepath.Join(c.cacheDir, coverID)
}

// Path returns the on-disk path a cover would be cached under, whether or
// not it currently exists there
func (c *Cache) Path(coverID string) string {
	return c.path(coverID)
}

// NotModifiedSince reports whether the cached file for coverID exists and
// has an mtime at or before ifModifiedSince, i.e. a conditional GET carrying
// that header can be answered with 304 without resending the body
func (c *Cache) NotModifiedSince(coverID string, ifModifiedSince int64) bool {
	info, err := os.Stat(c.path(coverID))
	if err != nil {
		return false
	}
	return !info.ModTime().After(unixToTime(ifModifiedSince))
}

// Stale reports whether the cached file for coverID is missing or older
// than sourceModTime. The cache file's own mtime is forced equal to the
// source's mtime on write (see Put), so a plain mtime comparison is enough
// to detect staleness without re-reading or re-hashing file contents
func (c *Cache) Stale(coverID string, sourceModTime int64) bool {
	info, err := os.Stat(c.path(coverID))
	if err != nil {
		return true
	}
	return info.ModTime().Unix() < sourceModTime
}

// Get returns the cached bytes and content type for coverID, or an error if
// nothing is cached yet
func (c *Cache) Get(coverID string) ([]byte, string, error) {
	data, err := os.ReadFile(c.path(coverID))
	if err != nil {
		return nil, "", err
	}
	return data, ContentTypeFromMagic(data), nil
}

// Put writes data to the cache under coverID and forces the cache file's
// mtime to sourceModTime, so Stale can later detect a changed source without
// re-reading it
func (c *Cache) Put(coverID string, data []byte, sourceModTime int64) error {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create cover cache dir '%s'", c.cacheDir)
	}
	path := c.path(coverID)
	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "cannot create cover cache file '%s'", tmp)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "cannot write cover cache file '%s'", tmp)
	}
	f.Close()
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "cannot finalize cover cache file '%s'", path)
	}
	mtime := unixToTime(sourceModTime)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		log.Warnf("%v", errors.Wrapf(err, "cannot set mtime on cover cache file '%s'", path))
	}
	return nil
}

// CopyFromSource reads cover bytes directly from an external sidecar image
// file at sourcePath and caches them under coverID
func (c *Cache) CopyFromSource(coverID, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return errors.Wrapf(err, "cannot stat cover source '%s'", sourcePath)
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return errors.Wrapf(err, "cannot open cover source '%s'", sourcePath)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrapf(err, "cannot read cover source '%s'", sourcePath)
	}
	return c.Put(coverID, data, info.ModTime().Unix())
}
