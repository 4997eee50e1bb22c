package xnb

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeName is a parsed reader or target type name with namespaces and
// assembly qualifiers removed. Both the XNA form
//
//	Microsoft.Xna.Framework.Content.ListReader`1[[System.Int32, mscorlib, Version=4.0.0.0]]
//
// and the short form ListReader<Int32> parse to the same value.
type TypeName struct {
	Namespace string
	Base      string
	Args      []TypeName
	// Array is set for single dimension array types such as Int32[].
	Array bool
}

// String returns the canonical short form, e.g. "DictionaryReader<String,Int32>".
func (t TypeName) String() string {
	var sb strings.Builder
	sb.WriteString(t.Base)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	if t.Array {
		sb.WriteString("[]")
	}
	return sb.String()
}

func ParseTypeName(s string) (TypeName, error) {
	tn, err := parseTypeName(s)
	if err != nil {
		return TypeName{}, errors.Wrapf(err, "parse type name %q", s)
	}
	return tn, nil
}

func parseTypeName(s string) (TypeName, error) {
	s = strings.TrimSpace(s)
	parts, err := splitTopLevel(s, ',')
	if err != nil {
		return TypeName{}, err
	}
	// Everything after the first top-level comma is assembly, version,
	// culture or public key token.
	s = strings.TrimSpace(parts[0])
	if s == "" {
		return TypeName{}, errors.New("empty type name")
	}

	var tn TypeName
	if strings.HasSuffix(s, "[]") {
		tn.Array = true
		s = strings.TrimSuffix(s, "[]")
	}

	cut := strings.IndexAny(s, "`<[")
	switch {
	case cut < 0:
		tn.Namespace, tn.Base = splitNamespace(s)
	case s[cut] == '<':
		if !strings.HasSuffix(s, ">") {
			return TypeName{}, errors.Newf("unterminated generic argument list in %q", s)
		}
		tn.Namespace, tn.Base = splitNamespace(s[:cut])
		items, err := splitTopLevel(s[cut+1:len(s)-1], ',')
		if err != nil {
			return TypeName{}, err
		}
		for _, item := range items {
			arg, err := parseTypeName(item)
			if err != nil {
				return TypeName{}, err
			}
			tn.Args = append(tn.Args, arg)
		}
	case s[cut] == '`':
		tn.Namespace, tn.Base = splitNamespace(s[:cut])
		rest := s[cut+1:]
		digits := strings.IndexByte(rest, '[')
		if digits < 0 {
			return TypeName{}, errors.Newf("open generic type %q", s)
		}
		arity, err := strconv.Atoi(rest[:digits])
		if err != nil || arity <= 0 {
			return TypeName{}, errors.Newf("bad generic arity in %q", s)
		}
		block := rest[digits:]
		if len(block) < 2 || block[len(block)-1] != ']' {
			return TypeName{}, errors.Newf("unterminated generic argument block in %q", s)
		}
		items, err := splitTopLevel(block[1:len(block)-1], ',')
		if err != nil {
			return TypeName{}, err
		}
		if len(items) != arity {
			return TypeName{}, errors.Newf("%q declares %d generic arguments, found %d", s, arity, len(items))
		}
		for _, item := range items {
			item = strings.TrimSpace(item)
			if len(item) < 2 || item[0] != '[' || item[len(item)-1] != ']' {
				return TypeName{}, errors.Newf("generic argument %q is not bracketed", item)
			}
			arg, err := parseTypeName(item[1 : len(item)-1])
			if err != nil {
				return TypeName{}, err
			}
			tn.Args = append(tn.Args, arg)
		}
	default:
		return TypeName{}, errors.Newf("unexpected '[' in %q", s)
	}
	if tn.Base == "" || strings.ContainsAny(tn.Base, " []<>`") {
		return TypeName{}, errors.Newf("invalid type name %q", s)
	}
	return tn, nil
}

// splitNamespace separates "A.B.C" into "A.B" and "C". Nested type markers
// ('+') are treated like namespace separators.
func splitNamespace(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, ".+")
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

// splitTopLevel splits s at sep, ignoring separators nested in [] or <>.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
			if depth < 0 {
				return nil, errors.Newf("unbalanced brackets in %q", s)
			}
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.Newf("unbalanced brackets in %q", s)
	}
	return append(out, s[start:]), nil
}
