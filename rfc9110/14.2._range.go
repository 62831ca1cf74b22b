package rfc9110

import "golang.org/x/exp/slices"

// §  14.2.  Range
// §
// §     The "Range" header field on a GET request modifies the method
// §     semantics to request transfer of only one or more subranges of the
// §     selected representation data (Section 8.1), rather than the entire
// §     selected representation.
// §
// §       Range = ranges-specifier
// §
// §     A server MAY ignore the Range header field.  However, origin servers
// §     and intermediate caches ought to support byte ranges when possible,
// §     since they support efficient recovery from partially failed
// §     transfers and partial retrieval of large representations.
// §
// §     When multiple ranges are requested, a server MAY coalesce any of the
// §     ranges that overlap, or that are separated by a gap that is smaller
// §     than the overhead of sending multiple parts, regardless of the order
// §     in which the corresponding range-spec appeared in the received Range
// §     header field.

// MergeRanges sorts ranges by start and coalesces the ones that overlap or
// are byte-adjacent. The result is sorted, disjoint and never adjacent.
// The input slice is not modified.
func MergeRanges(ranges []ByteRange) []ByteRange {
	if len(ranges) < 2 {
		return slices.Clone(ranges)
	}
	sorted := slices.Clone(ranges)
	slices.SortStableFunc(sorted, func(a, b ByteRange) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	merged := make([]ByteRange, 0, len(sorted))
	acc := sorted[0]
	for _, r := range sorted[1:] {
		if acc.adjoins(r) {
			if r.End > acc.End {
				acc.End = r.End
			}
			continue
		}
		merged = append(merged, acc)
		acc = r
	}
	return append(merged, acc)
}

// adjoins reports whether next overlaps r or begins right after its last byte.
// next must not start before r.
func (r ByteRange) adjoins(next ByteRange) bool {
	return next.Start <= r.End || next.Start-r.End == 1
}
