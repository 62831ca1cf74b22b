package rfc9110

import (
	"strings"

	"github.com/pkg/errors"
)

// §  13.1.5.  If-Range
// §
// §     The "If-Range" header field provides a special conditional request
// §     mechanism that is similar to the If-Match and If-Unmodified-Since
// §     header fields but that instructs the recipient to ignore the Range
// §     header field if the validator doesn't match, resulting in transfer
// §     of the new selected representation instead of a 412 (Precondition
// §     Failed) response.
// §
// §       If-Range = entity-tag / HTTP-date
//
// IfRange is either IfRangeDate or IfRangeETag.
type IfRange interface {
	isIfRange()
	String() string
}

// IfRangeDate holds the HTTP-date form of If-Range.
type IfRangeDate struct {
	Date HttpDate
}

// IfRangeETag holds the entity-tag form of If-Range, quotes and weak
// prefix included.
type IfRangeETag struct {
	Tag string
}

func (IfRangeDate) isIfRange() {}
func (IfRangeETag) isIfRange() {}

func (d IfRangeDate) String() string { return d.Date.String() }
func (e IfRangeETag) String() string { return e.Tag }

// §       entity-tag = [ weak ] opaque-tag
// §       weak       = %s"W/"
// §       opaque-tag = DQUOTE *etagc DQUOTE
//
// Weak reports whether the tag carries the W/ prefix.
func (e IfRangeETag) Weak() bool {
	return strings.HasPrefix(e.Tag, "W/")
}

// ParseIfRange picks the entity-tag form when the value starts like one
// and parses an HTTP-date otherwise.
func ParseIfRange(value string) (IfRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmpty
	}
	if strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "W/") {
		opaque := strings.TrimPrefix(value, "W/")
		if len(opaque) < 2 || !strings.HasPrefix(opaque, `"`) || !strings.HasSuffix(opaque, `"`) {
			return nil, errors.Wrapf(ErrMalformed, "entity-tag %q", value)
		}
		return IfRangeETag{Tag: value}, nil
	}
	date, err := ParseHttpDate(value)
	if err != nil {
		return nil, errors.Wrap(err, "If-Range")
	}
	return IfRangeDate{Date: date}, nil
}
