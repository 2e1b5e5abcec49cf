package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// FileRecord is the persisted, per-file snapshot a scan compares the
// filesystem against, keyed by path+size+mtime rather than content hash
// (spec §4.F: avoid re-parsing unchanged files). Song carries every tag
// field parsed for this file, so a file whose path+size+mtime are unchanged
// across a process restart can be folded back into the catalog without
// re-reading it (spec §4.C)
type FileRecord struct {
	Path      string // relative to the music folder
	Size      int64
	LastWrite time.Time
	Created   time.Time
	Song      *Song `json:",omitempty"`
}

// ScanRecord is the full persisted scan state (spec §4.C): the file
// snapshot plus the diagnostics produced by the last completed scan
type ScanRecord struct {
	Files             []FileRecord
	MissingPlaylists  []MissingPlaylistItem
	InvalidPlaylists  []InvalidPlaylist
	LastScanFinished  time.Time
}

const recordFileName = "scan-record.json"

// recordPath returns the path of the scan record file under cacheDir
func recordPath(cacheDir string) string {
	return filepath.Join(cacheDir, recordFileName)
}

// LoadScanRecord reads the scan record from cacheDir. A missing or corrupt
// file is tolerated and returns an empty record (spec §4.C: "treat an
// absent or corrupt record as an empty one, never as an error that blocks
// scanning"), so a first scan or a damaged cache dir degrades to a full
// from-scratch scan rather than failing outright
func LoadScanRecord(cacheDir string) ScanRecord {
	raw, err := os.ReadFile(recordPath(cacheDir))
	if err != nil {
		return ScanRecord{}
	}
	var rec ScanRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ScanRecord{}
	}
	sort.Slice(rec.Files, func(i, j int) bool { return rec.Files[i].Path < rec.Files[j].Path })
	return rec
}

// SaveScanRecord persists rec to cacheDir, writing to a temp file first and
// renaming into place so a crash mid-write never corrupts the previous
// record
func SaveScanRecord(cacheDir string, rec ScanRecord) error {
	sort.Slice(rec.Files, func(i, j int) bool { return rec.Files[i].Path < rec.Files[j].Path })
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot marshal scan record")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create cache dir '%s'", cacheDir)
	}
	return writeFileAtomic(recordPath(cacheDir), raw)
}

// fileDiff is the outcome of comparing a prior FileRecord set against the
// current directory walk: del holds files that disappeared or changed (and
// so must be re-parsed if still present under add), add holds files that
// are new or changed
type fileDiff struct {
	Del []FileRecord
	Add []FileRecord
}

// diffFileRecords compares prior (sorted by path, from the last scan
// record) against current (sorted by path, freshly walked) using the same
// two-pointer merge the teacher's content package uses to diff track
// lists, keyed here by path+size+mtime instead of a single lastChanged
// timestamp
func diffFileRecords(prior, current []FileRecord) fileDiff {
	var d fileDiff
	i, j := 0, 0
	for i < len(prior) || j < len(current) {
		switch {
		case i >= len(prior):
			d.Add = append(d.Add, current[j])
			j++
		case j >= len(current):
			d.Del = append(d.Del, prior[i])
			i++
		case prior[i].Path == current[j].Path:
			if prior[i].Size != current[j].Size || !prior[i].LastWrite.Equal(current[j].LastWrite) {
				d.Del = append(d.Del, prior[i])
				d.Add = append(d.Add, current[j])
			}
			i++
			j++
		case prior[i].Path < current[j].Path:
			d.Del = append(d.Del, prior[i])
			i++
		default:
			d.Add = append(d.Add, current[j])
			j++
		}
	}
	return d
}
