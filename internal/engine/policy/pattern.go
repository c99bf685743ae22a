// Package policy compiles declared caching routes into an ordered, first-match-wins table.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"go.trai.ch/pwa/internal/core/domain"
)

// DetectKind picks a match kind for a pattern without an explicit one.
// Compiled regexes stay regexes, specs with glob metacharacters are globs, anything else is literal.
func DetectKind(p domain.Pattern) domain.MatchKind {
	switch {
	case p.Regexp != nil:
		return domain.MatchRegex
	case strings.ContainsAny(p.Spec, "*?"):
		return domain.MatchGlob
	default:
		return domain.MatchLiteral
	}
}

// CompilePattern compiles p into an anchored matcher. An explicit kind is honored as given;
// domain.MatchAuto detects it. The returned kind is the one actually used.
func CompilePattern(p domain.Pattern, kind domain.MatchKind) (*regexp.Regexp, domain.MatchKind, error) {
	if p.IsZero() {
		return nil, kind, invalid(domain.ErrInvalidPattern, "empty pattern")
	}
	if !kind.IsValid() {
		return nil, kind, invalid(domain.ErrInvalidPattern, "unknown match kind %q", string(kind))
	}
	if kind == domain.MatchAuto {
		kind = DetectKind(p)
	}

	switch kind {
	case domain.MatchRegex:
		if p.Regexp != nil {
			return p.Regexp, kind, nil
		}
		re, err := regexp.Compile(p.Spec)
		if err != nil {
			return nil, kind, invalid(domain.ErrInvalidPattern, "%s", err.Error())
		}
		return re, kind, nil

	case domain.MatchGlob:
		src, err := globToRegexp(p.String())
		if err != nil {
			return nil, kind, err
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, kind, invalid(domain.ErrInvalidPattern, "%s", err.Error())
		}
		return re, kind, nil

	default:
		return regexp.MustCompile("^" + regexp.QuoteMeta(p.String()) + "$"), domain.MatchLiteral, nil
	}
}

// globToRegexp translates a path glob into an anchored regular expression.
//
//	**/    zero or more leading directories
//	**     any characters, separators included
//	*      any characters within one segment
//	?      one character other than a separator
//	{a,b}  alternation
//
// Every other character, brackets included, matches itself.
func globToRegexp(glob string) (string, error) {
	runes := []rune(glob)

	var b strings.Builder
	b.WriteString("^")

	depth := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				i++
				atSegmentStart := i == 1 || runes[i-2] == '/'
				if atSegmentStart && i+1 < len(runes) && runes[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
				} else {
					b.WriteString(".*")
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '{':
			depth++
			b.WriteString("(?:")
		case '}':
			if depth == 0 {
				b.WriteString(regexp.QuoteMeta("}"))
				continue
			}
			depth--
			b.WriteString(")")
		case ',':
			if depth > 0 {
				b.WriteString("|")
				continue
			}
			b.WriteString(",")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	if depth != 0 {
		return "", invalid(domain.ErrInvalidPattern, "unbalanced braces in %q", glob)
	}

	b.WriteString("$")
	return b.String(), nil
}

// invalid builds an error that matches sentinel with errors.Is and carries a detail message.
func invalid(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
