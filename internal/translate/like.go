package translate

import (
	"strings"

	"github.com/roach88/estable/internal/esdsl"
	"github.com/roach88/estable/internal/predicate"
)

func (t *Translator) translateLike(pred predicate.Like, path string) (esdsl.Query, error) {
	field, err := t.exactField(leafField(path, pred.Column))
	if err != nil {
		return nil, err
	}
	if literal, ok := likeLiteral(pred.Pattern); ok {
		// No wildcards: plain exact match on the unescaped literal.
		return esdsl.Term{Field: field, Value: literal}, nil
	}
	if prefix, ok := pureSuffixWildcard(pred.Pattern); ok {
		return esdsl.Prefix{Field: field, Value: prefix, CaseInsensitive: pred.CaseInsensitive}, nil
	}
	return esdsl.Wildcard{
		Field:           field,
		Pattern:         likeToWildcard(pred.Pattern),
		CaseInsensitive: pred.CaseInsensitive,
	}, nil
}

// likeLiteral reports whether the pattern contains no unescaped % or _,
// returning the pattern with its escapes resolved so it can match as a
// plain term.
func likeLiteral(pattern string) (string, bool) {
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%' || r == '_':
			return "", false
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\') // dangling escape kept as a literal backslash
	}
	return b.String(), true
}

// pureSuffixWildcard recognizes patterns of the form "<literal>%": a
// single trailing % and no other wildcard or escape. These lower to a
// prefix query, cheaper than a general wildcard.
func pureSuffixWildcard(pattern string) (string, bool) {
	if !strings.HasSuffix(pattern, "%") {
		return "", false
	}
	literal := pattern[:len(pattern)-1]
	if strings.ContainsAny(literal, "%_\\") {
		return "", false
	}
	return literal, true
}

// likeToWildcard rewrites a LIKE pattern for the wildcard query:
// % becomes *, _ becomes ?, backslash-escaped characters stay literal,
// and literal * or ? in the input are escaped.
func likeToWildcard(pattern string) string {
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			if r == '*' || r == '?' || r == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteByte('*')
		case r == '_':
			b.WriteByte('?')
		case r == '*' || r == '?':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteString(`\\`) // dangling escape kept as a literal backslash
	}
	return b.String()
}
