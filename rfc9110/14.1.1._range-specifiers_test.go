package rfc9110

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Examples from RFC 9110 Section 14.1.2, assuming a representation of
// length 10000.
func TestParseRangeSet(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   RangeSet
	}{
		{"first 500 bytes", "bytes=0-499", RangeSet{Ranges: []ByteRange{{0, 499}}}},
		{"second 500 bytes", "bytes=500-999", RangeSet{Ranges: []ByteRange{{500, 999}}}},
		{"final 500 bytes as suffix", "bytes=-500", RangeSet{Ranges: []ByteRange{{9500, 9999}}}},
		{"final 500 bytes as open range", "bytes=9500-", RangeSet{Ranges: []ByteRange{{9500, 9999}}}},
		{"first and last byte", "bytes=0-0,-1", RangeSet{Ranges: []ByteRange{{0, 0}, {9999, 9999}}}},
		{"first, middle and last 1000 bytes", "bytes= 0-999, 4500-5499, -1000",
			RangeSet{Ranges: []ByteRange{{0, 999}, {4500, 5499}, {9000, 9999}}}},
		{"adjacent", "bytes=500-600,601-999", RangeSet{Ranges: []ByteRange{{500, 999}}}},
		{"adjacent reversed", "bytes=601-999,500-600", RangeSet{Ranges: []ByteRange{{500, 999}}}},
		{"overlapping", "bytes=500-700,601-999", RangeSet{Ranges: []ByteRange{{500, 999}}}},
		{"overlapping reversed", "bytes=601-999,500-700", RangeSet{Ranges: []ByteRange{{500, 999}}}},
		{"three way chain", "bytes=300-400,400-700,601-999", RangeSet{Ranges: []ByteRange{{300, 999}}}},
		{"contained", "bytes=0-999,100-200", RangeSet{Ranges: []ByteRange{{0, 999}}}},
		{"gap of one byte", "bytes=0-9,11-20", RangeSet{Ranges: []ByteRange{{0, 9}, {11, 20}}}},
		{"unknown complete length", "bytes=0-499/*",
			RangeSet{Ranges: []ByteRange{{0, 499}}, CompleteLength: UnknownLength()}},
		{"known complete length", "bytes=0-499/8000",
			RangeSet{Ranges: []ByteRange{{0, 499}}, CompleteLength: KnownLength(8000)}},
		{"whitespace around separators", "bytes = 0-499 / 1234",
			RangeSet{Ranges: []ByteRange{{0, 499}}, CompleteLength: KnownLength(1234)}},
		{"all but first 500", "bytes=500-1233/1234",
			RangeSet{Ranges: []ByteRange{{500, 1233}}, CompleteLength: KnownLength(1234)}},
		{"last 500 of 1234", "bytes=734-1233/1234",
			RangeSet{Ranges: []ByteRange{{734, 1233}}, CompleteLength: KnownLength(1234)}},
		{"end past representation", "bytes=9000-20000", RangeSet{Ranges: []ByteRange{{9000, 20000}}}},
		{"open range past representation", "bytes=20000-", RangeSet{Ranges: []ByteRange{{20000, 20000}}}},
		{"max positions", "bytes=18446744073709551614-18446744073709551615,0-0",
			RangeSet{Ranges: []ByteRange{{0, 0}, {math.MaxUint64 - 1, math.MaxUint64}}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseRangeSet(c.header, 10000)
			if err != nil {
				t.Fatalf("Error parsing %q: %v", c.header, err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("ParseRangeSet(%q) mismatch (-want +got):\n%s", c.header, diff)
			}
		})
	}
}

func TestParseRangeSetErrors(t *testing.T) {
	cases := []struct {
		name          string
		header        string
		contentLength uint64
		want          ParseError
	}{
		{"empty", "", 10000, ErrEmpty},
		{"other unit", "items=0-499", 10000, ErrMalformed},
		{"no equals sign", "bytes", 10000, ErrMalformed},
		{"two equals signs", "bytes=0-499=500-999", 10000, ErrMalformed},
		{"two slashes", "bytes=0-499/1234/1234", 10000, ErrMalformed},
		{"non-numeric first-pos", "bytes=a-499", 10000, ErrMalformed},
		{"non-numeric last-pos", "bytes=0-4x9", 10000, ErrMalformed},
		{"signed position", "bytes=+1-499", 10000, ErrMalformed},
		{"no positions", "bytes=-", 10000, ErrMalformed},
		{"three dash tokens", "bytes=0-1-2", 10000, ErrMalformed},
		{"no range-spec", "bytes=", 10000, ErrMalformed},
		{"empty range-spec in list", "bytes=0-1,,5-6", 10000, ErrMalformed},
		{"last-pos before first-pos", "bytes=500-499", 10000, ErrMalformed},
		{"zero suffix", "bytes=-0", 10000, ErrMalformed},
		{"bad complete length", "bytes=0-499/abc", 10000, ErrMalformed},
		{"empty complete length", "bytes=0-499/", 10000, ErrMalformed},
		{"suffix longer than representation", "bytes=-10001", 10000, ErrArithmeticOverflow},
		{"open range of empty representation", "bytes=0-", 0, ErrArithmeticOverflow},
		{"position beyond uint64", "bytes=0-18446744073709551616", 10000, ErrArithmeticOverflow},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rs, err := ParseRangeSet(c.header, c.contentLength)
			if !errors.Is(err, c.want) {
				t.Fatalf("ParseRangeSet(%q) error is %v, expected %v", c.header, err, c.want)
			}
			if rs.Ranges != nil || rs.CompleteLength != nil {
				t.Fatalf("ParseRangeSet(%q) returned partial result %+v", c.header, rs)
			}
		})
	}
}

func TestParseServableRangeSet(t *testing.T) {
	cases := []struct {
		header string
		want   []ByteRange
	}{
		{"bytes=-100", []ByteRange{{0, 35}}},
		{"bytes=-36", []ByteRange{{0, 35}}},
		{"bytes=-6", []ByteRange{{30, 35}}},
		{"bytes=0-1,-100", []ByteRange{{0, 35}}},
		{"bytes=40-50,-100", []ByteRange{{0, 35}, {40, 50}}},
	}
	for _, c := range cases {
		rs, err := ParseServableRangeSet(c.header, 36)
		if err != nil {
			t.Fatalf("Error parsing %q: %v", c.header, err)
		}
		if diff := cmp.Diff(c.want, rs.Ranges); diff != "" {
			t.Fatalf("ParseServableRangeSet(%q) mismatch (-want +got):\n%s", c.header, diff)
		}
	}

	// nothing to select in an empty representation
	if _, err := ParseServableRangeSet("bytes=-100", 0); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("Error for empty representation is %v", err)
	}
	if _, err := ParseServableRangeSet("bytes=-0", 36); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Error for zero suffix is %v", err)
	}
}

func TestRangeSetString(t *testing.T) {
	for _, header := range []string{
		"bytes=734-1233/1234",
		"bytes=734-1233/*",
		"bytes=734-1233",
		"bytes=0-0,1233-1233",
	} {
		rs, err := ParseRangeSet(header, 1234)
		if err != nil {
			t.Fatalf("Error parsing %q: %v", header, err)
		}
		if s := rs.String(); s != header {
			t.Fatalf("String of %q is %q", header, s)
		}
	}
	if s := (RangeSet{CompleteLength: KnownLength(10)}).String(); s != "" {
		t.Fatalf("Empty set serialized to %q", s)
	}
}

func TestRangeSetRoundTrip(t *testing.T) {
	for _, header := range []string{
		"bytes=-500",
		"bytes=9500-",
		"bytes= 0-999, 4500-5499, -1000/*",
		"bytes=601-999,500-600,0-10/10000",
		"bytes=20000-",
	} {
		rs, err := ParseRangeSet(header, 10000)
		if err != nil {
			t.Fatalf("Error parsing %q: %v", header, err)
		}
		again, err := ParseRangeSet(rs.String(), 10000)
		if err != nil {
			t.Fatalf("Error parsing serialized %q: %v", rs.String(), err)
		}
		if diff := cmp.Diff(rs, again); diff != "" {
			t.Fatalf("Round trip of %q mismatch (-first +second):\n%s", header, diff)
		}
	}
}

func TestSatisfiable(t *testing.T) {
	cases := []struct {
		header string
		want   bool
	}{
		{"bytes=1233-", true},
		{"bytes=1233-1233", true},
		{"bytes=1234-1300", false},
		{"bytes=5000-6000", false},
		{"bytes=5000-6000,0-0", true},
		{"bytes=-1", true},
	}
	for _, c := range cases {
		rs, err := ParseRangeSet(c.header, 1234)
		if err != nil {
			t.Fatalf("Error parsing %q: %v", c.header, err)
		}
		if got := rs.AnySatisfiable(1234); got != c.want {
			t.Fatalf("AnySatisfiable(%q) is %v", c.header, got)
		}
		if rs.NoneSatisfiable(1234) == rs.AnySatisfiable(1234) {
			t.Fatalf("NoneSatisfiable(%q) is not the negation of AnySatisfiable", c.header)
		}
	}
	if (RangeSet{}).AnySatisfiable(1234) {
		t.Fatal("Empty set is satisfiable")
	}
}
