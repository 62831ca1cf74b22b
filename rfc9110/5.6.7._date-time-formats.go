package rfc9110

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// §  5.6.7.  Date/Time Formats
// §
// §     Prior to 1995, there were three different formats commonly used by
// §     servers to communicate timestamps.  For compatibility with old
// §     implementations, all three are defined here.  The preferred format is
// §     a fixed-length and single-zone subset of the date and time
// §     specification used by the Internet Message Format [RFC5322].
// §
// §       HTTP-date    = IMF-fixdate / obs-date
// §
// §     An example of the preferred format is
// §
// §       Sun, 06 Nov 1994 08:49:37 GMT    ; IMF-fixdate
// §
// §     Examples of the two obsolete formats are
// §
// §       Sunday, 06-Nov-94 08:49:37 GMT   ; obsolete RFC 850 format
// §       Sun Nov  6 08:49:37 1994         ; ANSI C's asctime() format
// §
// §     A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.  When a sender generates a field
// §     that contains one or more timestamps defined as HTTP-date, the sender
// §     MUST generate those timestamps in the IMF-fixdate format.

// HttpDate is a timestamp split into its IMF-fixdate components.
// Whatever format it was parsed from, it renders as IMF-fixdate.
type HttpDate struct {
	// "Mon", "Tue", ... "Sun"
	DayName string
	Day     int
	// "Jan", "Feb", ... "Dec"
	Month  string
	Year   int
	Hour   int
	Minute int
	Second int
}

// ParseHttpDate accepts IMF-fixdate and both obsolete formats.
// The error of the IMF-fixdate attempt is returned when all fail. A
// day-name that does not match the date is ErrMalformed.
func ParseHttpDate(value string) (HttpDate, error) {
	if value == "" {
		return HttpDate{}, ErrEmpty
	}
	t, err := imfDate(value)
	if err != nil {
		var obsErr error
		if t, obsErr = obsDate(value); obsErr != nil {
			return HttpDate{}, errors.Wrapf(ErrMalformed, "HTTP-date %q: %s", value, err)
		}
	}
	if !dayNameMatches(value, t) {
		return HttpDate{}, errors.Wrapf(ErrMalformed, "HTTP-date %q: date is a %s", value, t.Weekday())
	}
	return HttpDateFromTime(t), nil
}

// HttpDateFromTime converts t to UTC and splits it into components.
func HttpDateFromTime(t time.Time) HttpDate {
	t = t.UTC()
	return HttpDate{
		DayName: t.Weekday().String()[:3],
		Day:     t.Day(),
		Month:   t.Month().String()[:3],
		Year:    t.Year(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}

// Time returns the date as a UTC time.Time.
func (d HttpDate) Time() time.Time {
	month := time.January
	for m := time.January; m <= time.December; m++ {
		if m.String()[:3] == d.Month {
			month = m
			break
		}
	}
	return time.Date(d.Year, month, d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

// Date is the date1 part, e.g. "06 Nov 1994".
func (d HttpDate) Date() string {
	return fmt.Sprintf("%02d %s %04d", d.Day, d.Month, d.Year)
}

// TimeOfDay is the time-of-day part, e.g. "08:49:37".
func (d HttpDate) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.Hour, d.Minute, d.Second)
}

// String renders the IMF-fixdate form.
func (d HttpDate) String() string {
	return d.DayName + ", " + d.Date() + " " + d.TimeOfDay() + " GMT"
}

// §     Preferred format:
// §
// §       IMF-fixdate  = day-name "," SP date1 SP time-of-day SP GMT
// §       ; fixed length/zone/capitalization subset of the format
// §       ; see Section 3.3 of [RFC5322]
// §
// §       day-name     = %s"Mon" / %s"Tue" / %s"Wed"
// §                    / %s"Thu" / %s"Fri" / %s"Sat" / %s"Sun"
// §
// §       date1        = day SP month SP year
// §                    ; e.g., 02 Jun 1982
// §
// §       day          = 2DIGIT
// §       month        = %s"Jan" / %s"Feb" / %s"Mar" / %s"Apr"
// §                    / %s"May" / %s"Jun" / %s"Jul" / %s"Aug"
// §                    / %s"Sep" / %s"Oct" / %s"Nov" / %s"Dec"
// §       year         = 4DIGIT
// §
// §       GMT          = %s"GMT"
// §
// §       time-of-day  = hour ":" minute ":" second
// §                    ; 00:00:00 - 23:59:60 (leap second)
// §
// §       hour         = 2DIGIT
// §       minute       = 2DIGIT
// §       second       = 2DIGIT
//
// "GMT" is matched literally, so the parsed time is always UTC.
const imfDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

func imfDate(dateStr string) (time.Time, error) {
	return time.Parse(imfDateLayout, normalizeDateStr(dateStr))
}

// §     Obsolete formats:
// §
// §       obs-date     = rfc850-date / asctime-date
// §
// §       rfc850-date  = day-name-l "," SP date2 SP time-of-day SP GMT
// §       date2        = day "-" month "-" 2DIGIT
// §                    ; e.g., 02-Jun-82
// §
// §       day-name-l   = %s"Monday" / %s"Tuesday" / %s"Wednesday"
// §                    / %s"Thursday" / %s"Friday" / %s"Saturday"
// §                    / %s"Sunday"
// §
// §       asctime-date = day-name SP date3 SP time-of-day SP year
// §       date3        = month SP ( 2DIGIT / ( SP 1DIGIT ))
// §                    ; e.g., Jun  2
const (
	rfc850DateLayout  = "Monday, 02-Jan-06 15:04:05 GMT"
	asctimeDateLayout = time.ANSIC
)

func obsDate(dateStr string) (time.Time, error) {
	str := normalizeDateStr(dateStr)
	if date, err := time.Parse(rfc850DateLayout, str); err == nil {
		return pivotTwoDigitYear(date), nil
	}
	return time.Parse(asctimeDateLayout, str)
}

// §     HTTP-date is case sensitive.  Note that Section 4.2 of [CACHING]
// §     relaxes this for cache recipients.
func normalizeDateStr(dateStr string) string {
	return strings.ToUpper(strings.TrimSpace(dateStr))
}

// dayNameMatches checks the leading day-name against the parsed date.
// time.Parse accepts any valid day name.
func dayNameMatches(dateStr string, date time.Time) bool {
	return strings.HasPrefix(normalizeDateStr(dateStr), strings.ToUpper(date.Weekday().String()[:3]))
}

// §     Recipients of a timestamp value in rfc850-date format, which uses a
// §     two-digit year, MUST interpret a timestamp that appears to be more
// §     than 50 years in the future as representing the most recent year in
// §     the past that had the same last two digits.
func pivotTwoDigitYear(date time.Time) time.Time {
	current := now().Year()
	year := current - current%100 + date.Year()%100
	if year > current+50 {
		year -= 100
	}
	return date.AddDate(year-date.Year(), 0, 0)
}

var now = time.Now
