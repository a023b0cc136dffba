package snapshot

import (
	"regexp"
	"time"
)

// Time is a read-only calendar value. time.Time already has value
// semantics; the wrapper makes calendar values a distinct member of the
// closed kind set so they survive round trips through Value.
type Time struct {
	t time.Time
}

func (t *Time) Kind() Kind { return KindTime }
func (t *Time) sealed()    {}

// Std returns the wrapped time by value; mutating the copy cannot affect
// the snapshot.
func (t *Time) Std() time.Time { return t.t }

func (t *Time) UnixMilli() int64 { return t.t.UnixMilli() }

func (t *Time) Format(layout string) string { return t.t.Format(layout) }

// Pattern wraps a compiled matcher. The live *regexp.Regexp stays private
// because Longest mutates matching behavior in place; match and derive
// operations are exposed instead.
type Pattern struct {
	re *regexp.Regexp
}

func (p *Pattern) Kind() Kind { return KindPattern }
func (p *Pattern) sealed()    {}

// String returns the pattern source.
func (p *Pattern) String() string { return p.re.String() }

func (p *Pattern) MatchString(s string) bool { return p.re.MatchString(s) }

func (p *Pattern) FindString(s string) string { return p.re.FindString(s) }

func (p *Pattern) FindAllString(s string, n int) []string { return p.re.FindAllString(s, n) }

// ReplaceAllString derives a new string; the pattern itself is untouched.
func (p *Pattern) ReplaceAllString(src, repl string) string {
	return p.re.ReplaceAllString(src, repl)
}
