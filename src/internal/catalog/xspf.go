package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// xspfNamespace is the XSPF playlist format's XML namespace
const xspfNamespace = "http://xspf.org/ns/0/"

// addedAtNamespace is euterpe's own extension namespace, carrying the one
// piece of per-track state XSPF has no native field for: when the track was
// added to the playlist
const addedAtNamespace = "http://meziantou.net/xspf-extension/1/"

// xspfDoc is the root <playlist> element
type xspfDoc struct {
	XMLName    xml.Name        `xml:"http://xspf.org/ns/0/ playlist"`
	Version    string          `xml:"version,attr"`
	Title      string          `xml:"title,omitempty"`
	TrackList  xspfTrackList   `xml:"trackList"`
	Extensions []xspfExtension `xml:"extension,omitempty"`
}

type xspfTrackList struct {
	Tracks []xspfTrack `xml:"track"`
}

type xspfTrack struct {
	Location   string          `xml:"location"`
	Title      string          `xml:"title,omitempty"`
	Creator    string          `xml:"creator,omitempty"`
	Album      string          `xml:"album,omitempty"`
	TrackNum   int             `xml:"trackNum,omitempty"`
	Duration   int             `xml:"duration,omitempty"` // milliseconds, per XSPF
	Extensions []xspfExtension `xml:"extension,omitempty"`
}

// xspfExtension is captured as raw inner XML so any extension this code
// doesn't understand survives a read-modify-write cycle unchanged
type xspfExtension struct {
	Application string `xml:"application,attr"`
	InnerXML    string `xml:",innerxml"`
}

// ParsedXSPFTrack is one <track> entry after euterpe's own addedAt
// extension has been extracted and the remaining extensions preserved
// verbatim
type ParsedXSPFTrack struct {
	Location    string
	Title       string
	AddedAt     time.Time
	HasAddedAt  bool
	OtherExtXML []byte // concatenated raw <extension> blocks, excluding euterpe's own
}

// ParsedXSPF is an XSPF playlist after parsing
type ParsedXSPF struct {
	Title       string
	Tracks      []ParsedXSPFTrack
	OtherExtXML []byte
}

// ParseXSPF reads and decodes the XSPF playlist at path
func ParseXSPF(path string) (*ParsedXSPF, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc xspfDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "cannot parse xspf '%s'", path)
	}

	out := &ParsedXSPF{
		Title:       doc.Title,
		OtherExtXML: collectOtherExtensions(doc.Extensions, ""),
	}
	for _, t := range doc.TrackList.Tracks {
		pt := ParsedXSPFTrack{Location: t.Location, Title: t.Title}
		for _, ext := range t.Extensions {
			if ext.Application == addedAtNamespace {
				if ts, ok := extractAddedAt(ext.InnerXML); ok {
					pt.AddedAt = ts
					pt.HasAddedAt = true
				}
				continue
			}
		}
		pt.OtherExtXML = collectOtherExtensions(t.Extensions, addedAtNamespace)
		out.Tracks = append(out.Tracks, pt)
	}
	return out, nil
}

// collectOtherExtensions serializes every extension block whose application
// URI isn't skip, so it can be re-emitted verbatim on write
func collectOtherExtensions(exts []xspfExtension, skip string) []byte {
	var buf bytes.Buffer
	for _, ext := range exts {
		if ext.Application == skip {
			continue
		}
		fmt.Fprintf(&buf, `<extension application="%s">%s</extension>`, ext.Application, ext.InnerXML)
	}
	if buf.Len() == 0 {
		return nil
	}
	return buf.Bytes()
}

var addedAtTagRe = `meziantou:addedAt`

// extractAddedAt pulls the RFC3339 timestamp out of
// "<meziantou:addedAt>...</meziantou:addedAt>"
func extractAddedAt(inner string) (time.Time, bool) {
	start := strings.Index(inner, "<"+addedAtTagRe+">")
	if start < 0 {
		return time.Time{}, false
	}
	start += len("<" + addedAtTagRe + ">")
	end := strings.Index(inner[start:], "</"+addedAtTagRe+">")
	if end < 0 {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(inner[start:start+end]))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// WriteXSPFTrack is the per-track input to WriteXSPF
type WriteXSPFTrack struct {
	Location    string
	Title       string
	AddedAt     time.Time
	OtherExtXML []byte
}

// WriteXSPF serializes tracks to an XSPF document at path, preserving each
// track's OtherExtXML verbatim and writing euterpe's own addedAt extension.
// The file is written atomically: to a temp file, then renamed into place
func WriteXSPF(path, title string, tracks []WriteXSPFTrack, playlistExtXML []byte) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<playlist version="1" xmlns="%s">`, xspfNamespace)
	if title != "" {
		fmt.Fprintf(&buf, "<title>%s</title>", xmlEscape(title))
	}
	buf.WriteString("<trackList>")
	for _, t := range tracks {
		buf.WriteString("<track>")
		fmt.Fprintf(&buf, "<location>%s</location>", xmlEscape(t.Location))
		if t.Title != "" {
			fmt.Fprintf(&buf, "<title>%s</title>", xmlEscape(t.Title))
		}
		fmt.Fprintf(&buf, `<extension application="%s"><meziantou:addedAt>%s</meziantou:addedAt></extension>`,
			addedAtNamespace, t.AddedAt.UTC().Format(time.RFC3339))
		buf.Write(t.OtherExtXML)
		buf.WriteString("</track>")
	}
	buf.WriteString("</trackList>")
	buf.Write(playlistExtXML)
	buf.WriteString("</playlist>")

	return writeFileAtomic(path, buf.Bytes())
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// writeFileAtomic writes data to a temp file in the same directory as path
// and renames it into place, so a concurrent reader never observes a
// partially-written playlist
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
