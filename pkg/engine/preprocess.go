package engine

import "strings"

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites shape source into a form zygomys accepts:
//
//   - :keyword becomes the string "__kw_keyword", so keywords never
//     collide with user variables.
//   - half-width becomes half_width; zygomys reads a hyphen as minus.
//   - ; and ;; comments become // comments.
//
// Text inside double-quoted strings and comments is left alone.
func preprocessSource(source string) string {
	var sb strings.Builder
	sb.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"':
			j := stringEnd(source, i)
			sb.WriteString(source[i:j])
			i = j

		case c == ';':
			j := i
			for j < len(source) && source[j] == ';' {
				j++
			}
			k := strings.IndexByte(source[j:], '\n')
			if k < 0 {
				k = len(source) - j
			}
			sb.WriteString("//")
			sb.WriteString(source[j : j+k])
			i = j + k

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKWChar(source[j]) {
				j++
			}
			sb.WriteByte('"')
			sb.WriteString(kwPrefix)
			sb.WriteString(source[i+1 : j])
			sb.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(source) &&
			isIdentChar(source[i-1]) && isLetter(source[i+1]):
			sb.WriteByte('_')
			i++

		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// stringEnd returns the index just past the string literal opening at i.
// An unterminated literal runs to the end of source.
func stringEnd(source string, i int) int {
	for j := i + 1; j < len(source); j++ {
		switch source[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(source)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
