package trust

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// PatternKind discriminates the trust pattern variants. An explicit tagged
// variant avoids runtime type inspection of heterogeneous list entries.
type PatternKind int

const (
	// KindPrefix matches URLs that begin with a literal string.
	KindPrefix PatternKind = iota
	// KindGlob matches URLs against a compiled glob expression.
	KindGlob
	// KindWildcard matches every URL unconditionally.
	KindWildcard
)

// Pattern is one entry of a configuration's trust list.
type Pattern struct {
	kind   PatternKind
	prefix string
	glob   glob.Glob
	raw    string
}

// Prefix returns a pattern that matches any URL beginning with the literal
// string p.
func Prefix(p string) Pattern {
	return Pattern{kind: KindPrefix, prefix: p, raw: p}
}

// Glob compiles expr into a glob pattern matched against the full URL.
func Glob(expr string) (Pattern, error) {
	g, err := glob.Compile(expr)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, "[trust.Glob] invalid pattern %q", expr)
	}
	return Pattern{kind: KindGlob, glob: g, raw: expr}, nil
}

// Wildcard returns the sentinel pattern that trusts every domain.
func Wildcard() Pattern {
	return Pattern{kind: KindWildcard, raw: "*"}
}

// Kind returns the pattern variant.
func (p Pattern) Kind() PatternKind { return p.kind }

// String returns the source text of the pattern.
func (p Pattern) String() string { return p.raw }

// Matches reports whether the URL matches this pattern.
func (p Pattern) Matches(url string) bool {
	switch p.kind {
	case KindWildcard:
		return true
	case KindGlob:
		return p.glob.Match(url)
	default:
		return strings.HasPrefix(url, p.prefix)
	}
}

// List is a configuration's ordered trust list.
type List []Pattern

// IsWildcard reports whether the list contains the wildcard sentinel, meaning
// every domain is trusted.
func (l List) IsWildcard() bool {
	for _, p := range l {
		if p.kind == KindWildcard {
			return true
		}
	}
	return false
}

// Matches reports whether the URL matches any pattern in the list.
func (l List) Matches(url string) bool {
	for _, p := range l {
		if p.Matches(url) {
			return true
		}
	}
	return false
}
