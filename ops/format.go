package ops

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// Format controls the response rendering format.
//
// This is shared across ops handlers that support multiple output formats.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func normalizeFormat(f Format) Format {
	if f != FormatText && f != FormatJSON {
		return FormatText
	}
	return f
}

func formatFromRequest(r *http.Request, def Format) Format {
	if r == nil || r.URL == nil {
		return def
	}
	switch r.URL.Query().Get("format") {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return def
	}
}

// writeResponse renders v as JSON, or text() as plain text. Error bodies in text mode are the
// escaped error message.
func writeResponse(w http.ResponseWriter, r *http.Request, f Format, code int, v any, errMsg string, text func() string) {
	w.Header().Set("Cache-Control", "no-store")
	if f == FormatJSON {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(code)
			return
		}
		render.Status(r, code)
		render.JSON(w, r, v)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	if code/100 != 2 || text == nil {
		writeTextError(w, escapeTextField(errMsg))
		return
	}
	_, _ = w.Write([]byte(text()))
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, f Format, allow string, v any) {
	w.Header().Set("Allow", allow)
	writeResponse(w, r, f, http.StatusMethodNotAllowed, v, "method not allowed", nil)
}

func writeTextError(w http.ResponseWriter, msg string) {
	if msg != "" {
		_, _ = w.Write([]byte(msg + "\n"))
		return
	}
	_, _ = w.Write([]byte("error\n"))
}

// textLines builds the line-based, tab-separated text format: <section>\t<key>\t<field>\t<value>\n
type textLines struct {
	b strings.Builder
}

func (l *textLines) add(fields ...string) {
	for i, f := range fields {
		if i > 0 {
			l.b.WriteByte('\t')
		}
		l.b.WriteString(escapeTextField(f))
	}
	l.b.WriteByte('\n')
}

func (l *textLines) String() string { return l.b.String() }

func escapeTextField(s string) string {
	// Text outputs in ops are line-based and tab-separated.
	// Escape control characters to prevent output injection / parsing ambiguity.
	//
	// Rules:
	//   - '\'  => '\\'
	//   - '\t' => '\t'
	//   - '\r' => '\r'
	//   - '\n' => '\n'
	//   - other ASCII control chars (0x00-0x1f) => \u00XX
	//
	// If no escaping is needed, returns s as-is.
	need := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '\\' || c < 0x20 {
			need = true
			break
		}
	}
	if !need {
		return s
	}
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\n':
			b.WriteString(`\n`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func getQueryRequired(r *http.Request, name string) (string, bool) {
	if r == nil || r.URL == nil {
		return "", false
	}
	vs, ok := r.URL.Query()[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
