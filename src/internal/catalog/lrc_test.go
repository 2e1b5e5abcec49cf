package catalog

import "testing"

func TestParseLRCStripsMetadataKeepsTimedText(t *testing.T) {
	content := "[ar:Some Artist]\n[ti:Some Title]\n[00:01.00]First line\n[00:05.50]Second line\n[offset:0]\n"
	got := ParseLRC(content)
	want := "First line\nSecond line"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseLRCDropsEmptyTimedLines(t *testing.T) {
	content := "[00:01.00]\n[00:02.00]Hello\n"
	got := ParseLRC(content)
	if got != "Hello" {
		t.Fatalf("got %q, want %q", got, "Hello")
	}
}

func TestParseLRCHandlesStackedTimeTags(t *testing.T) {
	content := "[00:01.00][00:03.00]Repeated line\n"
	got := ParseLRC(content)
	if got != "Repeated line" {
		t.Fatalf("got %q, want %q", got, "Repeated line")
	}
}
