package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/scope"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites a defaults script before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global registration.
//  2. kebab-case identifiers become snake_case, since zygomys reads a
//     hyphen as the minus operator.
//  3. ; line comments become // comments.
//
// String literals are copied unchanged.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i)
			result = append(result, b[i:j]...)
			i = j
		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j
		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipString returns the index just past the double-quoted literal that
// starts at b[i].
func skipString(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	return min(j+1, len(b))
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

// ---------------------------------------------------------------------------
// Values passed between builtins
// ---------------------------------------------------------------------------

// sexpColour wraps a level.Colour so (rgb ...) can feed (colour ...).
type sexpColour struct {
	c level.Colour
}

func (s *sexpColour) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgb %d %d %d)", s.c.R, s.c.G, s.c.B)
}
func (s *sexpColour) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toName accepts a keyword or a plain string.
func toName(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	name, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return name, nil
}

func toColour(args []zygo.Sexp) (level.Colour, error) {
	if len(args) == 1 {
		if c, ok := args[0].(*sexpColour); ok {
			return c.c, nil
		}
		return level.Colour{}, fmt.Errorf("expected (rgb r g b), got %T (%s)", args[0], args[0].SexpString(nil))
	}
	if len(args) != 3 {
		return level.Colour{}, fmt.Errorf("expected 3 colour components, got %d", len(args))
	}
	var v [3]int
	for i, a := range args {
		n, err := toInt(a)
		if err != nil {
			return level.Colour{}, err
		}
		if n < 0 || n > 255 {
			return level.Colour{}, fmt.Errorf("colour component %d out of range 0-255", n)
		}
		v[i] = n
	}
	return level.Colour{R: v[0], G: v[1], B: v[2]}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the defaults builtins, writing into d.
// Source must go through preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, d *Defaults) {

	// (texture "wall" "textures/hell/cbrick2")
	// (texture :wall "textures/hell/cbrick2" :floor "textures/hell/qfloor")
	env.AddFunction("texture", tableSetter("texture", d.Textures, ""))

	// (transform "wall" "( ( 0.0078125 0 0.5 ) ( 0 -0.0078125 -1 ) )")
	env.AddFunction("transform", tableSetter("transform", d.Textures, scope.TransformSuffix))

	// (rgb 150 150 150)
	env.AddFunction("rgb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := toColour(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rgb: %w", err)
		}
		return &sexpColour{c: c}, nil
	})

	// (colour :mid 150 150 150) or (colour :floor (rgb 10 10 200))
	env.AddFunction("colour", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("colour requires a position and a colour")
		}
		pos, err := toName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("colour: position: %w", err)
		}
		on, ok := level.ParseLightOn(pos)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("colour: invalid position %q, expected mid, floor or ceiling", pos)
		}
		c, err := toColour(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("colour: %w", err)
		}
		d.Colours[on] = c
		return &sexpColour{c: c}, nil
	})
}

// tableSetter returns a builtin storing name/value pairs into t under
// name+suffix.
func tableSetter(fn string, t scope.Table, suffix string) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires name and value pairs", fn)
		}
		if len(pa.positional) == 0 && len(pa.order) == 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires a name and a value", fn)
		}
		var last string
		for i := 0; i < len(pa.positional); i += 2 {
			key, err := toName(pa.positional[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
			}
			val, err := toString(pa.positional[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %s: %w", fn, key, err)
			}
			t[key+suffix] = val
			last = val
		}
		for _, key := range pa.order {
			val, err := toString(pa.kw[key])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %s: %w", fn, key, err)
			}
			t[key+suffix] = val
			last = val
		}
		return &zygo.SexpStr{S: last}, nil
	}
}
