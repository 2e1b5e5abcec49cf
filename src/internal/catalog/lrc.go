package catalog

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// lrcAnyBracketLine matches any line with a leading "[...]" tag, such as
// "[ar:Artist Name]" or "[00:12.34]"; lrcTimedLine distinguishes the two by
// requiring the bracket contents to be a timestamp
var lrcTimedLine = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?:\.(\d{1,3}))?\](.*)$`)
var lrcAnyBracketLine = regexp.MustCompile(`^\[[^\]]*\]`)

// ParseLRC extracts the lyric text from LRC-formatted content (spec §4.D):
// "[mm:ss.xx]text" lines keep their text, "[tag:value]" metadata lines are
// dropped, plain lines without a leading tag pass through trimmed, blank
// lines are dropped, and surviving lines are joined with "\n"
func ParseLRC(content string) string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if m := lrcTimedLine.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[4])
			// a timed line may carry multiple [mm:ss.xx] tags back to back
			// before the lyric text begins; strip any further leading tags
			for {
				if stripped := lrcAnyBracketLine.ReplaceAllString(text, ""); stripped != text {
					text = strings.TrimSpace(stripped)
					continue
				}
				break
			}
			if text != "" {
				lines = append(lines, text)
			}
			continue
		}
		// any other bracketed line ([ar:...], [ti:...], [by:...], [offset:...],
		// [length:...], etc.) is metadata and is dropped; a line without a
		// leading tag is plain lyric text and is kept
		if !lrcAnyBracketLine.MatchString(line) {
			if text := strings.TrimSpace(line); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ReadLRCFile reads and parses the sidecar lyrics file at path. A missing
// file is reported via the returned error, not a special-cased empty string,
// so callers can distinguish "no lyrics" from "lyrics file vanished mid-scan"
func ReadLRCFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ParseLRC(string(raw)), nil
}
