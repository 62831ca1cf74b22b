package alwaysrange

import (
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/always-cache/always-range/rfc9110"
	"github.com/always-cache/always-range/store"
)

// §  14.6.  Media Type multipart/byteranges
// §
// §     When a 206 (Partial Content) response message includes the content of
// §     multiple ranges, they are transmitted as body parts in a multipart
// §     message body ([RFC2046], Section 5.1) with the media type of
// §     "multipart/byteranges".
// §
// §     The "multipart/byteranges" media type includes one or more body parts,
// §     each with its own Content-Type and Content-Range fields.  The
// §     required boundary parameter specifies the boundary string used to
// §     separate each body part.
// §
// §     Implementation Notes:
// §
// §     1.  Additional CRLFs might precede the first boundary string in the
// §         body.
// §
// §     2.  Although [RFC2046] permits the boundary string to be quoted, some
// §         existing implementations handle a quoted boundary string
// §         incorrectly.
func sendMultipart(w http.ResponseWriter, r *http.Request, rep store.Representation, ranges []rfc9110.ByteRange) error {
	mw := multipart.NewWriter(w)
	length := rfc9110.KnownLength(uint64(len(rep.Bytes)))

	w.Header().Set("Content-Type", "multipart/byteranges; boundary="+mw.Boundary())
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return nil
	}

	for _, br := range ranges {
		partHeader := textproto.MIMEHeader{}
		if rep.ContentType != "" {
			partHeader.Set("Content-Type", rep.ContentType)
		}
		partHeader.Set("Content-Range", rfc9110.ContentRange(br, length))
		part, err := mw.CreatePart(partHeader)
		if err != nil {
			return err
		}
		if _, err := part.Write(rep.Bytes[br.Start : br.End+1]); err != nil {
			return err
		}
	}
	return mw.Close()
}
