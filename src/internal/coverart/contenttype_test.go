package coverart

import "testing"

func TestContentTypeFromMagic(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, 0x00, 0x00, 0x00)
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	other := []byte{0x00, 0x01, 0x02}

	if got := ContentTypeFromMagic(png); got != "image/png" {
		t.Errorf("got %q, want image/png", got)
	}
	if got := ContentTypeFromMagic(jpeg); got != "image/jpeg" {
		t.Errorf("got %q, want image/jpeg", got)
	}
	if got := ContentTypeFromMagic(other); got != "image/jpeg" {
		t.Errorf("got %q, want image/jpeg (default)", got)
	}
}
