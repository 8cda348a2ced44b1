// Package envexpr expands ${env.KEY} references in configuration text.
package envexpr

import (
	"strings"
	"unicode"
)

const prefix = "${env."

// LookupFunc resolves a variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Expand replaces every ${env.KEY} in text with the value returned by lookup,
// or with "" when the key is unknown. A reference without a closing brace is
// kept literally, as is a prefix followed by an invalid key.
func Expand(text string, lookup LookupFunc) string {
	var b strings.Builder
	for {
		start := strings.Index(text, prefix)
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:start])
		rest := text[start+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(text[start:])
			return b.String()
		}
		key := rest[:end]
		if !validKey(key) {
			// rescan right after the prefix so nested references still expand
			b.WriteString(prefix)
			text = rest
			continue
		}
		if value, ok := lookup(key); ok {
			b.WriteString(value)
		}
		text = rest[end+1:]
	}
}

func validKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
