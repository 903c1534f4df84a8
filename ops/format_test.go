package ops

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeTextField(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"":            "",
		"plain-name":  "plain-name",
		"a\tb":        `a\tb`,
		"line\r\n":    `line\r\n`,
		`back\slash`:  `back\\slash`,
		"nul\x00bell": `nul\u0000bell`,
		"esc\x1b":     `esc\u001b`,
	} {
		assert.Equal(t, want, escapeTextField(in), "in=%q", in)
	}
}

func TestFormatFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?format=json", nil)
	assert.Equal(t, FormatJSON, formatFromRequest(r, FormatText))
	r = httptest.NewRequest(http.MethodGet, "/?format=text", nil)
	assert.Equal(t, FormatText, formatFromRequest(r, FormatJSON))
	r = httptest.NewRequest(http.MethodGet, "/?format=xml", nil)
	assert.Equal(t, FormatJSON, formatFromRequest(r, FormatJSON))
	assert.Equal(t, FormatText, normalizeFormat(Format(42)))
}

func TestGetQueryRequired(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?name=a&name=b&empty=", nil)
	v, ok := getQueryRequired(r, "name")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = getQueryRequired(r, "empty")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = getQueryRequired(r, "missing")
	assert.False(t, ok)
}
