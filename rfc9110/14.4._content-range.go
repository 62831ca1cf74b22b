package rfc9110

import "strconv"

// §  14.3.  Accept-Ranges
// §
// §     The "Accept-Ranges" field in a response indicates whether an upstream
// §     server supports range requests for the target resource.
// §
// §       Accept-Ranges     = acceptable-ranges
// §       acceptable-ranges = 1#range-unit
// §
// §     A client MAY generate range requests regardless of having received an
// §     Accept-Ranges field.
// §
// §     A server that does not support any kind of range request for the
// §     target resource MAY send
// §
// §       Accept-Ranges: none
// §
// §     to advise the client not to attempt a range request on the same
// §     request path.
const (
	AcceptRangesBytes = RangeUnit
	AcceptRangesNone  = "none"
)

// §  14.4.  Content-Range
// §
// §     The "Content-Range" header field is sent in a single part 206
// §     (Partial Content) response to indicate the partial range of the
// §     selected representation enclosed as the message content, sent in
// §     each part of a multipart 206 response to indicate the range enclosed
// §     within each body part (Section 14.6), and sent in 416 (Range Not
// §     Satisfiable) responses to provide information about the selected
// §     representation.
// §
// §       Content-Range       = range-unit SP
// §                             ( range-resp / unsatisfied-range )
// §
// §       range-resp          = incl-range "/" ( complete-length / "*" )
// §       incl-range          = first-pos "-" last-pos
// §       unsatisfied-range   = "*/" complete-length
// §
// §       complete-length     = 1*DIGIT

// ContentRange renders a range-resp, e.g. "bytes 734-1233/1234".
// A nil complete length renders as "*".
func ContentRange(r ByteRange, completeLength *CompleteLength) string {
	length := "*"
	if completeLength != nil {
		length = completeLength.String()
	}
	return RangeUnit + " " + r.String() + "/" + length
}

// §     A server generating a 416 (Range Not Satisfiable) response to a
// §     byte-range request SHOULD send a Content-Range header field with an
// §     unsatisfied-range value, as in the following example:
// §
// §       Content-Range: bytes */1234
// §
// §     The complete-length in a 416 response indicates the current length of
// §     the selected representation.

// UnsatisfiedContentRange renders an unsatisfied-range, e.g. "bytes */1234".
func UnsatisfiedContentRange(completeLength uint64) string {
	return RangeUnit + " */" + strconv.FormatUint(completeLength, 10)
}
