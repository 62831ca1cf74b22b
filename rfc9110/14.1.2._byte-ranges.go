package rfc9110

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// §  14.1.2.  Byte Ranges
// §
// §     The "bytes" range unit is used to express subranges of a
// §     representation data's octet sequence.  Each byte range is expressed
// §     as an integer range at which the range begins (first-pos) and an
// §     optional integer range at which the range ends (last-pos).
// §
// §     The first-pos value in a bytes int-range gives the offset of the first
// §     byte in a range.  The last-pos value gives the offset of the last
// §     byte in the range; that is, the byte positions specified are
// §     inclusive.  Byte offsets start at zero.

// ByteRange is an inclusive range of byte offsets, Start <= End.
type ByteRange struct {
	Start uint64
	End   uint64
}

// Length is the number of bytes in the range.
func (r ByteRange) Length() uint64 {
	return r.End - r.Start + 1
}

// String renders the range as an int-range, e.g. "500-999".
func (r ByteRange) String() string {
	return strconv.FormatUint(r.Start, 10) + "-" + strconv.FormatUint(r.End, 10)
}

// §     A client can limit the number of bytes requested without knowing the
// §     size of the selected representation.  If the last-pos value is
// §     absent, or if the value is greater than or equal to the current
// §     length of the representation data, the byte range is interpreted as
// §     the remainder of the representation (i.e., the server replaces the
// §     value of last-pos with a value that is one less than the current
// §     length of the selected representation).

// Clamp returns the range with End truncated to the last byte of a
// representation of the given length. Unsatisfiable ranges are returned as is.
func (r ByteRange) Clamp(contentLength uint64) ByteRange {
	if !r.Satisfiable(contentLength) {
		return r
	}
	if r.End >= contentLength {
		r.End = contentLength - 1
	}
	return r
}

// §     For a GET request, a valid bytes range-spec is satisfiable if it is
// §     either:
// §
// §     *  an int-range with a first-pos that is less than the current length
// §        of the selected representation or
// §
// §     *  a suffix-range with a non-zero suffix-length.

// Satisfiable reports whether the range starts inside a representation of
// the given length. Suffix ranges are resolved while parsing, so only the
// start needs checking here.
func (r ByteRange) Satisfiable(contentLength uint64) bool {
	return r.Start < contentLength
}

// §       int-range     = first-pos "-" [ last-pos ]
// §       first-pos     = 1*DIGIT
// §       last-pos      = 1*DIGIT
// §
// §       suffix-range  = "-" suffix-length
// §       suffix-length = 1*DIGIT
// §
// §     A suffix-range is a range expressed as a suffix of the representation
// §     data with the provided length.
// §
// §     A range-spec is invalid if the last-pos value is present and less
// §     than the first-pos.
// §
// §     If the selected representation is shorter than the specified
// §     suffix-length, the entire representation is used.
//
// A suffix-length longer than contentLength is ErrArithmeticOverflow unless
// wholeOnLongSuffix is set, in which case it selects the whole representation.
func parseRangeSpec(spec string, contentLength uint64, wholeOnLongSuffix bool) (ByteRange, error) {
	values := trimAll(strings.Split(spec, "-"))
	if len(values) != 2 {
		return ByteRange{}, errors.Wrapf(ErrMalformed, "range-spec %q", spec)
	}
	first, last := values[0], values[1]

	switch {
	case first == "" && last == "":
		return ByteRange{}, errors.Wrapf(ErrMalformed, "range-spec %q has no positions", spec)

	case first == "":
		suffix, err := parsePos(last)
		if err != nil {
			return ByteRange{}, errors.Wrapf(err, "suffix-length %q", last)
		}
		if suffix == 0 {
			return ByteRange{}, errors.Wrapf(ErrMalformed, "suffix-range %q selects no bytes", spec)
		}
		if suffix > contentLength && wholeOnLongSuffix && contentLength > 0 {
			return ByteRange{Start: 0, End: contentLength - 1}, nil
		}
		if suffix > contentLength {
			return ByteRange{}, errors.Wrapf(ErrArithmeticOverflow,
				"suffix-length %d exceeds representation length %d", suffix, contentLength)
		}
		return ByteRange{Start: contentLength - suffix, End: contentLength - 1}, nil

	case last == "":
		start, err := parsePos(first)
		if err != nil {
			return ByteRange{}, errors.Wrapf(err, "first-pos %q", first)
		}
		if contentLength == 0 {
			return ByteRange{}, errors.Wrapf(ErrArithmeticOverflow,
				"range-spec %q has no last byte in an empty representation", spec)
		}
		// starting past the end can never be served; keep it well formed
		if start >= contentLength {
			return ByteRange{Start: start, End: start}, nil
		}
		return ByteRange{Start: start, End: contentLength - 1}, nil

	default:
		start, err := parsePos(first)
		if err != nil {
			return ByteRange{}, errors.Wrapf(err, "first-pos %q", first)
		}
		end, err := parsePos(last)
		if err != nil {
			return ByteRange{}, errors.Wrapf(err, "last-pos %q", last)
		}
		if end < start {
			return ByteRange{}, errors.Wrapf(ErrMalformed, "last-pos precedes first-pos in %q", spec)
		}
		return ByteRange{Start: start, End: end}, nil
	}
}

// parsePos parses 1*DIGIT.
func parsePos(s string) (uint64, error) {
	if s == "" {
		return 0, ErrMalformed
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrMalformed
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		// only digits left, so this can only be out of range
		return 0, ErrArithmeticOverflow
	}
	return n, nil
}

func trimAll(parts []string) []string {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
