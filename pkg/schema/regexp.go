package schema

import "regexp"

// Regexp is a compiled regular expression matching whole strings only.
type Regexp struct {
	*regexp.Regexp
	expr string
}

// CompileRegexp compiles expr so that it only matches a whole string.
func CompileRegexp(expr string) (*Regexp, error) {
	// Compiled on its own first, so unbalanced groups cannot pair up with
	// the anchoring group.
	if _, err := regexp.Compile(expr); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}
	return &Regexp{Regexp: re, expr: expr}, nil
}

// MustCompileRegexp is like CompileRegexp but panics if expr cannot be
// compiled.
func MustCompileRegexp(expr string) *Regexp {
	re, err := CompileRegexp(expr)
	if err != nil {
		panic(err)
	}
	return re
}

// String returns the expression the Regexp was compiled from.
func (r *Regexp) String() string {
	return r.expr
}

// MarshalText returns the original expression.
func (r *Regexp) MarshalText() ([]byte, error) {
	return []byte(r.expr), nil
}
