package rfc9110

import (
	"time"

	"github.com/pkg/errors"
)

// §  8.8.2.  Last-Modified
// §
// §     The "Last-Modified" header field in a response provides a timestamp
// §     indicating the date and time at which the origin server believes the
// §     selected representation was last modified, as determined at the
// §     conclusion of handling the request.
// §
// §       Last-Modified = HTTP-date
// §
// §     An example of its use is
// §
// §       Last-Modified: Tue, 15 Nov 1994 12:45:26 GMT
type LastModified struct {
	Date HttpDate
}

func ParseLastModified(value string) (LastModified, error) {
	date, err := ParseHttpDate(value)
	if err != nil {
		return LastModified{}, errors.Wrap(err, "Last-Modified")
	}
	return LastModified{Date: date}, nil
}

// §  8.8.2.1.  Generation
// §
// §     An origin server SHOULD send Last-Modified for any selected
// §     representation for which a last modification date can be reasonably
// §     and consistently determined, since its use in conditional requests
// §     and evaluating cache freshness ([CACHING]) can substantially reduce
// §     unnecessary transfers and significantly improve service availability
// §     and scalability.
// §
// §     An origin server with a clock (as defined in Section 5.6.7) MUST NOT
// §     generate a Last-Modified date that is later than the server's time of
// §     message origination (Date, Section 6.6.1).
func LastModifiedAt(modified time.Time) LastModified {
	if current := now(); modified.After(current) {
		modified = current
	}
	return LastModified{Date: HttpDateFromTime(modified)}
}

func (l LastModified) String() string {
	return l.Date.String()
}
