package archive

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Request configures one archive listing
type Request struct {
	Name          string `yaml:"-"` // derived from the request file name
	Type          Type   `yaml:"type"`
	Limit         Limit  `yaml:"limit"`
	Format        Format `yaml:"format"`
	Before        string `yaml:"before"`
	After         string `yaml:"after"`
	ShowPostCount bool   `yaml:"show_post_count"`
	Echo          bool   `yaml:"echo"`
	Order         string `yaml:"order"`
	Image         string `yaml:"image"`
}

// DefaultRequest returns a request with every documented default applied
func DefaultRequest() Request {
	return Request{
		Type:   TypeMonthly,
		Format: FormatHTML,
		Echo:   true,
		Order:  OrderDesc,
		Image:  DefaultImage,
	}
}

// Normalize returns a copy with fallbacks applied: empty type becomes
// monthly, any order other than ASC becomes DESC, the limit is made
// non-negative, and empty format or image take their defaults.
func (r Request) Normalize() Request {
	if r.Type == "" {
		r.Type = TypeMonthly
	}

	r.Order = strings.ToUpper(r.Order)
	if r.Order != OrderAsc {
		r.Order = OrderDesc
	}

	if r.Limit < 0 {
		r.Limit = -r.Limit
	}

	if r.Format == "" {
		r.Format = FormatHTML
	}

	if r.Image == "" {
		r.Image = DefaultImage
	}

	return r
}

func (r Request) limitClause() string {
	if r.Limit <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(int(r.Limit))
}

// Limit caps the number of archive rows; zero means no limit
type Limit int

// UnmarshalYAML accepts numbers and loosely formatted strings
func (l *Limit) UnmarshalYAML(value *yaml.Node) error {
	*l = ParseLimit(value.Value)
	return nil
}

// ParseLimit reads the leading integer of s and returns its absolute value.
// Empty or non-numeric input yields 0 (no limit).
func ParseLimit(s string) Limit {
	n := leadingInt(strings.TrimSpace(s))
	if n < 0 {
		n = -n
	}
	return Limit(n)
}

// renderImage formats the image template the way printf would with the
// arguments (key, label). Sequential (%s), printf-positional (%1$s) and
// Go-positional (%[1]s) directives are understood with the s and d verbs.
// Anything else is copied through untouched.
func renderImage(template, key, label string) string {
	out, _ := expandImage(template, key, label)
	return out
}

// UnsupportedImageVerbs lists the directives in template that renderImage
// cannot substitute and will copy through verbatim.
func UnsupportedImageVerbs(template string) []string {
	_, unsupported := expandImage(template, "", "")
	return unsupported
}

func expandImage(template string, args ...string) (string, []string) {
	if !strings.Contains(template, "%") {
		return template, nil
	}

	var b strings.Builder
	var unsupported []string
	next := 0

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}

		n, index, verb := parseDirective(template[i+1:])
		if n == 0 {
			unsupported = append(unsupported, directiveText(template[i:]))
			b.WriteByte(c)
			continue
		}
		if verb == '%' {
			b.WriteByte('%')
			i += n
			continue
		}

		if index < 0 {
			index = next
			next++
		}
		if index >= len(args) {
			unsupported = append(unsupported, template[i:i+1+n])
			b.WriteString(template[i : i+1+n])
			i += n
			continue
		}

		arg := args[index]
		if verb == 'd' {
			arg = strconv.Itoa(leadingInt(arg))
		}
		b.WriteString(arg)
		i += n
	}

	return b.String(), unsupported
}

// parseDirective reads one directive following a '%'. It returns the number
// of bytes consumed, the zero-based argument index (-1 for sequential) and
// the verb. n is 0 when s does not start with a directive we understand.
func parseDirective(s string) (n, index int, verb byte) {
	if s == "" {
		return 0, 0, 0
	}
	if s[0] == '%' {
		return 1, 0, '%'
	}

	index = -1
	pos := 0
	switch {
	case s[0] == '[':
		digits := countDigits(s[1:])
		if digits == 0 || 1+digits >= len(s) || s[1+digits] != ']' {
			return 0, 0, 0
		}
		index = atoi(s[1:1+digits]) - 1
		if index < 0 {
			return 0, 0, 0
		}
		pos = digits + 2
	case s[0] >= '1' && s[0] <= '9':
		digits := countDigits(s)
		if digits >= len(s) || s[digits] != '$' {
			return 0, 0, 0
		}
		index = atoi(s[:digits]) - 1
		if index < 0 {
			return 0, 0, 0
		}
		pos = digits + 1
	}

	if pos >= len(s) || (s[pos] != 's' && s[pos] != 'd') {
		return 0, 0, 0
	}
	return pos + 1, index, s[pos]
}

// directiveText cuts an unrecognised directive at its first letter, which
// is where printf would stop reading it.
func directiveText(s string) string {
	for j := 1; j < len(s) && j < 8; j++ {
		c := s[j]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return s[:j+1]
		}
	}
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// leadingInt converts s the way a numeric directive would: an optional sign
// followed by the leading digits, or 0 when there are none.
func leadingInt(s string) int {
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	return sign * atoi(s[:countDigits(s)])
}
