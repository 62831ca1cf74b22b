package rfc9110

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// §  14.1.  Range Units
// §
// §     Representation data can be partitioned into subranges when there are
// §     addressable structural units inherent to that data's content coding
// §     or media type.  For example, octet (a.k.a. byte) boundaries are a
// §     structural unit common to all representation data, allowing
// §     partitions of the data to be identified as a range of bytes at some
// §     offset from the start or end of that data.
// §
// §       range-unit       = token
// §
// §     All range unit names are case-insensitive and ought to be registered
// §     within the "HTTP Range Unit Registry".

// RangeUnit is the only range unit understood here.
const RangeUnit = "bytes"

// §  14.1.1.  Range Specifiers
// §
// §     Ranges are expressed in terms of a range unit paired with a set of
// §     range specifiers.  The range unit name determines what kinds of
// §     range-spec are applicable to its own specifiers.  Hence, the
// §     following grammar is generic: each range unit is expected to specify
// §     requirements on when int-range, suffix-range, and other-range are
// §     allowed.
// §
// §       ranges-specifier = range-unit "=" range-set
// §       range-set        = 1#range-spec
// §       range-spec       = int-range
// §                        / suffix-range
// §                        / other-range
//
// The value may additionally carry a complete length after a "/", which
// is how Content-Range expresses it (Section 14.4).

// RangeSet is a parsed ranges-specifier. Ranges are sorted by start and
// neither overlap nor touch.
type RangeSet struct {
	Ranges []ByteRange
	// CompleteLength is nil when the value had no "/" segment.
	CompleteLength *CompleteLength
}

// §       complete-length     = 1*DIGIT
// §
// §     The complete-length is the total length of the selected
// §     representation, known by the sender at the time of generating
// §     the response, or "*" when it is unknown.

// CompleteLength is either a known representation length or unknown ("*").
type CompleteLength struct {
	Known  bool
	Length uint64
}

// KnownLength is a complete length of n bytes.
func KnownLength(n uint64) *CompleteLength {
	return &CompleteLength{Known: true, Length: n}
}

// UnknownLength is the "*" complete length.
func UnknownLength() *CompleteLength {
	return &CompleteLength{}
}

func (c CompleteLength) String() string {
	if !c.Known {
		return "*"
	}
	return strconv.FormatUint(c.Length, 10)
}

func parseCompleteLength(s string) (*CompleteLength, error) {
	if s == "*" {
		return UnknownLength(), nil
	}
	n, err := parsePos(s)
	if err != nil {
		return nil, errors.Wrapf(err, "complete-length %q", s)
	}
	return KnownLength(n), nil
}

// ParseRangeSet parses a "bytes=" value such as "bytes=0-499,-500/1234".
// Open ranges are resolved against contentLength and the result is merged.
// The first violation aborts parsing; errors match ErrEmpty, ErrMalformed
// or ErrArithmeticOverflow.
func ParseRangeSet(value string, contentLength uint64) (RangeSet, error) {
	return parseRangeSet(value, contentLength, false)
}

// ParseServableRangeSet is ParseRangeSet for a server answering the
// request: a suffix-range longer than a non-empty representation selects the
// entire representation instead of failing with ErrArithmeticOverflow.
func ParseServableRangeSet(value string, contentLength uint64) (RangeSet, error) {
	return parseRangeSet(value, contentLength, true)
}

func parseRangeSet(value string, contentLength uint64, wholeOnLongSuffix bool) (RangeSet, error) {
	if value == "" {
		return RangeSet{}, ErrEmpty
	}

	parts := trimAll(strings.Split(value, "="))
	if parts[0] != RangeUnit {
		return RangeSet{}, errors.Wrapf(ErrMalformed, "range unit %q", parts[0])
	}
	if len(parts) != 2 {
		return RangeSet{}, errors.Wrapf(ErrMalformed, "expected exactly one '=' in %q", value)
	}

	params := trimAll(strings.Split(parts[1], "/"))
	if len(params) > 2 {
		return RangeSet{}, errors.Wrapf(ErrMalformed, "expected at most one '/' in %q", value)
	}

	specs := strings.Split(params[0], ",")
	ranges := make([]ByteRange, 0, len(specs))
	for _, spec := range specs {
		r, err := parseRangeSpec(strings.TrimSpace(spec), contentLength, wholeOnLongSuffix)
		if err != nil {
			return RangeSet{}, err
		}
		ranges = append(ranges, r)
	}

	var rs RangeSet
	if len(params) == 2 {
		cl, err := parseCompleteLength(params[1])
		if err != nil {
			return RangeSet{}, err
		}
		rs.CompleteLength = cl
	}
	rs.Ranges = MergeRanges(ranges)
	return rs, nil
}

// String serializes the set back to "bytes=a-b,c-d[/n|/*]".
// A set without ranges serializes to the empty string.
func (rs RangeSet) String() string {
	if len(rs.Ranges) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(RangeUnit)
	b.WriteByte('=')
	for i, r := range rs.Ranges {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}
	if rs.CompleteLength != nil {
		b.WriteByte('/')
		b.WriteString(rs.CompleteLength.String())
	}
	return b.String()
}

// §  15.5.17.  416 Range Not Satisfiable
// §
// §     The 416 (Range Not Satisfiable) status code indicates that the set of
// §     ranges in the request's Range header field (Section 14.2) has been
// §     rejected either because none of the requested ranges are satisfiable
// §     or because the client has requested an excessive number of small or
// §     overlapping ranges (a potential denial of service attack).

// AnySatisfiable reports whether at least one range starts inside a
// representation of the given length.
func (rs RangeSet) AnySatisfiable(contentLength uint64) bool {
	for _, r := range rs.Ranges {
		if r.Satisfiable(contentLength) {
			return true
		}
	}
	return false
}

// NoneSatisfiable is the negation of AnySatisfiable; a server answers 416
// when it is true.
func (rs RangeSet) NoneSatisfiable(contentLength uint64) bool {
	return !rs.AnySatisfiable(contentLength)
}
