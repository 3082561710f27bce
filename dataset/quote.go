package dataset

import (
	"strings"
)

// quoted wraps a value in single quotes after escaping the characters the
// tokenizer treats specially inside quotes.
var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"'", "\\'",
	"\"", "\\\"",
	"%", "\\%",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

// needsQuoting reports whether a value must be quoted to survive the ARFF
// tokenizer: separators, comment and quote characters, braces, control
// characters, the empty string and a bare missing-value token.
func needsQuoting(s string) bool {
	if s == "" || s == "?" {
		return true
	}
	for _, r := range s {
		switch r {
		case ',', '\'', '"', '%', '{', '}':
			return true
		}
		if r <= ' ' {
			return true
		}
	}
	return false
}

// Quote returns s quoted and escaped if it contains characters that are
// structural in the ARFF format, s unchanged otherwise.
func Quote(s string) string {
	if !needsQuoting(s) {
		return s
	}
	return "'" + escaper.Replace(s) + "'"
}

// Unquote strips one level of surrounding single or double quotes and
// reverses the escaping applied by Quote. Unquoted input is returned
// unchanged.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}
	return UnescapeQuoted(s[1 : len(s)-1])
}

// UnescapeQuoted reverses the backslash escapes used inside quoted values.
func UnescapeQuoted(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
