// Package cleanse applies configured text clean-up to message fields.
package cleanse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shineum/mms-parser/internal/email"
)

// Transform rewrites a single field value.
type Transform func(string) string

// Target is implemented by email.Message and email.Parsed.
type Target interface {
	Field(f email.Field) *string
}

// Cleanser strips a character set from every field, then runs per-field
// transforms. The zero value is a no-op.
type Cleanser struct {
	StripCharacters string
	Map             map[email.Field]Transform
}

// Apply cleanses target in place.
func (c *Cleanser) Apply(target Target) {
	if c == nil || target == nil {
		return
	}
	for _, f := range email.Fields {
		v := target.Field(f)
		if v == nil {
			continue
		}
		if c.StripCharacters != "" {
			*v = Strip(*v, c.StripCharacters)
		}
		if fn, ok := c.Map[f]; ok && fn != nil {
			*v = fn(*v)
		}
	}
}

// Empty reports whether Apply would change nothing.
func (c *Cleanser) Empty() bool {
	return c == nil || (c.StripCharacters == "" && len(c.Map) == 0)
}

// Strip removes every occurrence of every rune in chars from s.
func Strip(s, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

// Substitute returns a Transform replacing all matches of pattern with
// replacement, which may reference groups as in regexp.Expand.
func Substitute(pattern, replacement string) (Transform, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanse pattern %q: %w", pattern, err)
	}
	return func(s string) string {
		return re.ReplaceAllString(s, replacement)
	}, nil
}

// TrimTrailingNewline removes trailing CR and LF characters.
func TrimTrailingNewline() Transform {
	return func(s string) string {
		return strings.TrimRight(s, "\r\n")
	}
}

// TrimSpace removes leading and trailing white space.
func TrimSpace() Transform {
	return strings.TrimSpace
}

// Chain runs transforms left to right.
func Chain(fns ...Transform) Transform {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}
