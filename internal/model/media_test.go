package model

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Galaxy", "Galaxy"},
		{"strips punctuation", "Galaxy!", "Galaxy"},
		{"spaces become underscores", "The Horsehead Nebula", "The_Horsehead_Nebula"},
		{"runs are not collapsed", "M31  and  M33", "M31__and__M33"},
		{"trims before replacing", "  Orion  ", "Orion"},
		{"keeps allowed symbols", "NGC-1300 (barred).v2_final", "NGC-1300_(barred).v2_final"},
		{"drops path separators", "../../etc/passwd", "....etcpasswd"},
		{"keeps unicode letters", "Comète Hale–Bopp", "Comète_HaleBopp"},
		{"tabs become underscores", "a\tb", "a_b"},
		{"vertical tab becomes underscore", "A\vB", "A_B"},
		{"no-break space becomes underscore", "A\u00a0B", "A_B"},
		{"em space becomes underscore", "A\u2003B", "A_B"},
		{"ideographic space becomes underscore", "A\u3000B", "A_B"},
		{"unicode spaces are trimmed", "\u3000Moon\u00a0", "Moon"},
		{"empty falls back", "", FallbackName},
		{"only symbols falls back", "!!!***", FallbackName},
		{"only whitespace falls back", " \t\n ", FallbackName},
		{"only unicode whitespace falls back", "\u00a0\u3000\v", FallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.input))
		})
	}
}

func TestSafeNameOnlyAllowedCharacters(t *testing.T) {
	allowed := regexp.MustCompile(`^[\p{L}\p{N}_().\-]+$`)
	inputs := []string{
		"Galaxy!",
		"a/b\\c:d*e?f\"g<h>i|j",
		"#$%^&@~`",
		"Moon & Venus @ dawn",
		"  spaced\ttitle\r\n",
		"日食 2024/04/08",
		"Moon\u00a0over\u3000Fuji\v",
	}
	for _, in := range inputs {
		out := SafeName(in)
		assert.NotEmpty(t, out, "input %q", in)
		assert.Regexp(t, allowed, out, "input %q", in)
	}
}

func TestMediaExtension(t *testing.T) {
	for _, ext := range []string{".png", ".gif", ".jpeg", ".jpg", ".webp"} {
		t.Run(ext, func(t *testing.T) {
			assert.Equal(t, ext, MediaExtension("https://apod.nasa.gov/apod/image/2401/pic"+ext))
			assert.Equal(t, ext, MediaExtension("https://apod.nasa.gov/apod/image/2401/PIC"+strings.ToUpper(ext)))
			assert.Equal(t, ext, MediaExtension("https://apod.nasa.gov/pic"+ext+"?size=large#top"))
		})
	}

	for _, raw := range []string{
		"https://example.com/video.mp4",
		"https://example.com/noext",
		"https://example.com/",
		"https://example.com/pic.png.txt",
		"://bad url",
	} {
		assert.Equal(t, ".jpg", MediaExtension(raw), raw)
	}
}

func TestMediaFilename(t *testing.T) {
	assert.Equal(t, "APOD_2024-01-01_Galaxy.png", MediaFilename("2024-01-01", "Galaxy!", "https://example.com/img.png"))
	assert.Equal(t, "APOD_2024-01-01_apod.jpg", MediaFilename("2024-01-01", "", "https://example.com/img"))
	assert.Equal(t, "APOD_....x_y.webp", MediaFilename("../../x", "y", "https://example.com/a.webp"))
}

func TestDownloadRequestWithDefaults(t *testing.T) {
	r := DownloadRequest{URL: "https://example.com/a.gif"}.WithDefaults()
	assert.Equal(t, FallbackName, r.Title)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, r.Date)
	assert.Equal(t, "APOD_"+r.Date+"_apod.gif", r.Filename())

	kept := DownloadRequest{URL: "u", Title: "t", Date: "2020-02-02"}.WithDefaults()
	assert.Equal(t, "t", kept.Title)
	assert.Equal(t, "2020-02-02", kept.Date)
}
