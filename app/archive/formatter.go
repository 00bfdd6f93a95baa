package archive

import (
	"html"
	"strings"
)

// allowedSchemes mirrors the protocols a site may link to from archives
var allowedSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ftps": true, "mailto": true,
	"news": true, "irc": true, "ircs": true, "gopher": true, "nntp": true,
	"feed": true, "telnet": true, "mms": true, "rtsp": true, "sms": true,
	"svn": true, "tel": true, "fax": true, "xmpp": true, "webcal": true, "urn": true,
}

type Formatter struct {
	filters *Filters
}

func NewFormatter(filters *Filters) *Formatter {
	return &Formatter{filters: filters}
}

// Run renders one archive link. The html format wraps the link in a list
// item; any other format emits before + anchor + after unwrapped. The result
// passes through the HookLink filters.
func (f *Formatter) Run(url, image, format, before, after string) string {
	url = EscapeURL(url)

	var b strings.Builder
	b.WriteString("\t")
	if Format(format) == FormatHTML {
		b.WriteString("<li>")
	}
	b.WriteString(before)
	b.WriteString("<a href='")
	b.WriteString(url)
	b.WriteString("'>")
	b.WriteString(image)
	b.WriteString("</a>")
	b.WriteString(after)
	if Format(format) == FormatHTML {
		b.WriteString("</li>")
	}
	b.WriteString("\n")

	return f.filters.Run(HookLink, b.String(), FilterContext{})
}

// EscapeURL prepares a URL for an href attribute. Links with a scheme outside
// allowedSchemes become empty; the rest are entity-escaped exactly once.
func EscapeURL(raw string) string {
	u := strings.TrimSpace(html.UnescapeString(raw))
	if u == "" {
		return ""
	}

	u = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == ' ' {
			return -1
		}
		return r
	}, u)

	if scheme, ok := urlScheme(u); ok && !allowedSchemes[strings.ToLower(scheme)] {
		return ""
	}

	return html.EscapeString(u)
}

// urlScheme returns the scheme when the colon precedes any path, query or
// fragment delimiter
func urlScheme(u string) (string, bool) {
	i := strings.IndexAny(u, ":/?#")
	if i <= 0 || u[i] != ':' {
		return "", false
	}
	return u[:i], true
}
