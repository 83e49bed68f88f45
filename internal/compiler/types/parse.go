package types

import (
	"fmt"
	"strings"
	"unicode"
)

// aliases lets schemas refer to builtin declarations by their simple name.
var aliases = map[string]string{
	"Object":             ObjectName,
	"String":             StringName,
	"CharSequence":       "lang.CharSequence",
	"Number":             "lang.Number",
	"Enum":               EnumName,
	"Boolean":            "lang.Boolean",
	"Byte":               "lang.Byte",
	"Short":              "lang.Short",
	"Integer":            "lang.Integer",
	"Long":               "lang.Long",
	"Character":          "lang.Character",
	"Float":              "lang.Float",
	"Double":             "lang.Double",
	"Collection":         "util.Collection",
	"List":               "util.List",
	"ArrayList":          "util.ArrayList",
	"Set":                "util.Set",
	"HashSet":            "util.HashSet",
	"Map":                "util.Map",
	"HashMap":            "util.HashMap",
	"SparseArray":        "util.SparseArray",
	"SparseBooleanArray": "util.SparseBooleanArray",
	"BigInteger":         "math.BigInteger",
	"BigDecimal":         "math.BigDecimal",
	"Date":               "time.Date",
	"Parcelable":         ParcelableName,
}

// Scope maps type variable names to the variables they denote while parsing.
type Scope map[string]*Variable

// ParseError describes a malformed type expression.
type ParseError struct {
	Expr    string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Expr, e.Pos, e.Message)
}

// Parse parses a type expression with no type variables in scope.
func Parse(expr string) (Type, error) {
	return ParseIn(expr, nil)
}

// MustParse is like Parse but panics on error. It is intended for tables of
// builtin types and tests.
func MustParse(expr string) Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseIn parses a type expression, resolving names in scope to type variables.
func ParseIn(expr string, scope Scope) (Type, error) {
	p := &typeParser{src: expr, scope: scope}
	p.next()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, p.errorf("unexpected %q", p.tok)
	}
	return t, nil
}

// ParseParams parses type parameter declarations such as "T extends lang.Enum<T>"
// or "T extends A & B". Bounds may refer to any parameter in the list.
func ParseParams(decls []string) ([]*Variable, Scope, error) {
	scope := make(Scope, len(decls))
	vars := make([]*Variable, len(decls))
	bounds := make([]string, len(decls))
	for i, decl := range decls {
		name, rest, _ := strings.Cut(strings.TrimSpace(decl), " ")
		if name == "" || !isIdent(name) {
			return nil, nil, &ParseError{Expr: decl, Message: "missing type parameter name"}
		}
		if _, dup := scope[name]; dup {
			return nil, nil, &ParseError{Expr: decl, Message: fmt.Sprintf("duplicate type parameter %s", name)}
		}
		rest = strings.TrimSpace(rest)
		if rest != "" {
			after, ok := strings.CutPrefix(rest, "extends ")
			if !ok {
				return nil, nil, &ParseError{Expr: decl, Message: "expected 'extends'"}
			}
			bounds[i] = after
		}
		vars[i] = &Variable{Name: name}
		scope[name] = vars[i]
	}
	for i, b := range bounds {
		if b == "" {
			continue
		}
		for _, part := range strings.Split(b, "&") {
			bound, err := ParseIn(strings.TrimSpace(part), scope)
			if err != nil {
				return nil, nil, err
			}
			vars[i].Bounds = append(vars[i].Bounds, bound)
		}
	}
	return vars, scope, nil
}

type typeParser struct {
	src   string
	pos   int
	start int
	tok   string
	scope Scope
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &ParseError{Expr: p.src, Pos: p.start, Message: fmt.Sprintf(format, args...)}
}

// next advances to the following token. Tokens are identifiers (dots included),
// single punctuation characters, or "" at the end of input.
func (p *typeParser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	p.start = p.pos
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	c := rune(p.src[p.pos])
	if isIdentRune(c) {
		for p.pos < len(p.src) && (isIdentRune(rune(p.src[p.pos])) || p.src[p.pos] == '.') {
			p.pos++
		}
	} else {
		p.pos++
	}
	p.tok = p.src[p.start:p.pos]
}

func (p *typeParser) expect(tok string) error {
	if p.tok != tok {
		if p.tok == "" {
			return p.errorf("expected %q, got end of input", tok)
		}
		return p.errorf("expected %q, got %q", tok, p.tok)
	}
	p.next()
	return nil
}

func (p *typeParser) parseType() (Type, error) {
	if p.tok == "?" {
		return p.parseWildcard()
	}
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for p.tok == "[" {
		p.next()
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		t = NewArray(t)
	}
	return t, nil
}

func (p *typeParser) parseWildcard() (Type, error) {
	p.next()
	switch p.tok {
	case "extends":
		p.next()
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Wildcard{Extends: bound}, nil
	case "super":
		p.next()
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Wildcard{Super: bound}, nil
	}
	return &Wildcard{}, nil
}

func (p *typeParser) parseBase() (Type, error) {
	name := p.tok
	if name == "" || !isIdentRune(rune(name[0])) {
		if name == "" {
			return nil, p.errorf("expected type name, got end of input")
		}
		return nil, p.errorf("expected type name, got %q", name)
	}
	p.next()

	var args []Type
	if p.tok == "<" {
		p.next()
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok == "," {
				p.next()
				continue
			}
			if err := p.expect(">"); err != nil {
				return nil, err
			}
			break
		}
	}

	if len(args) == 0 {
		if k, ok := KindFromName(name); ok {
			return NewPrimitive(k), nil
		}
		if v, ok := p.scope[name]; ok {
			return v, nil
		}
	}
	if q, ok := aliases[name]; ok {
		name = q
	}
	return NewDeclared(name, args...), nil
}

func isIdentRune(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isIdent(s string) bool {
	for i, c := range s {
		if !isIdentRune(c) || (i == 0 && unicode.IsDigit(c)) {
			return false
		}
	}
	return s != ""
}
