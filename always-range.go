package alwaysrange

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/always-cache/always-range/rfc9110"
	"github.com/always-cache/always-range/store"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Config struct {
	// Storage for representations.
	Store store.RepresentationStore
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Ignore Range headers and announce "Accept-Ranges: none".
	DisableRanges bool
	// Largest accepted PUT body. Defaults to 64 MiB.
	MaxPutBytes int64
}

type AlwaysRange struct {
	store         store.RepresentationStore
	log           zerolog.Logger
	disableRanges bool
	maxPutBytes   int64
}

const defaultMaxPutBytes = 64 << 20

// New creates an always-range handler serving the representations in
// config.Store.
func New(config Config) *AlwaysRange {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	a := &AlwaysRange{
		store:         config.Store,
		log:           logger,
		disableRanges: config.DisableRanges,
		maxPutBytes:   config.MaxPutBytes,
	}
	if a.maxPutBytes <= 0 {
		a.maxPutBytes = defaultMaxPutBytes
	}
	return a
}

// ServeHTTP implements the http.Handler interface.
func (a *AlwaysRange) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		a.serve(w, r)
	case http.MethodPut:
		a.put(w, r)
	case http.MethodDelete:
		a.purge(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, PUT, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// serve answers GET and HEAD with the full representation or the requested
// ranges of it.
func (a *AlwaysRange) serve(w http.ResponseWriter, r *http.Request) {
	rep, ok, err := a.store.Get(r.URL.Path)
	if err != nil {
		a.log.Error().Err(err).Str("path", r.URL.Path).Msg("Could not read representation")
		http.Error(w, "Could not read representation", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	a.setRepresentationHeaders(w.Header(), rep)

	rangeHeader := r.Header.Get("Range")
	// §     A server MUST ignore an If-Range header field received in a request
	// §     that does not contain a Range header field.
	if a.disableRanges || rangeHeader == "" || !ifRangeMatches(r.Header.Get("If-Range"), rep) {
		sendFull(w, r, rep)
		return
	}

	length := uint64(len(rep.Bytes))
	rs, err := rfc9110.ParseServableRangeSet(rangeHeader, length)
	if errors.Is(err, rfc9110.ErrArithmeticOverflow) {
		a.log.Trace().Err(err).Str("range", rangeHeader).Msg("Range cannot be resolved")
		sendUnsatisfiable(w, length)
		return
	}
	if err != nil {
		a.log.Trace().Err(err).Str("range", rangeHeader).Msg("Invalid range")
		http.Error(w, "Invalid Range header", http.StatusBadRequest)
		return
	}
	if rs.NoneSatisfiable(length) {
		sendUnsatisfiable(w, length)
		return
	}

	ranges := make([]rfc9110.ByteRange, 0, len(rs.Ranges))
	for _, br := range rs.Ranges {
		if br.Satisfiable(length) {
			ranges = append(ranges, br.Clamp(length))
		}
	}
	if len(ranges) == 1 {
		sendSinglePart(w, r, rep, ranges[0])
		return
	}
	if err := sendMultipart(w, r, rep, ranges); err != nil {
		a.log.Error().Err(err).Msg("Could not write multipart response")
	}
}

func (a *AlwaysRange) setRepresentationHeaders(h http.Header, rep store.Representation) {
	if a.disableRanges {
		h.Set("Accept-Ranges", rfc9110.AcceptRangesNone)
	} else {
		h.Set("Accept-Ranges", rfc9110.AcceptRangesBytes)
	}
	if rep.ContentType != "" {
		h.Set("Content-Type", rep.ContentType)
	}
	if !rep.LastModified.IsZero() {
		h.Set("Last-Modified", rfc9110.LastModifiedAt(rep.LastModified).String())
	}
	if rep.ETag != "" {
		h.Set("ETag", rep.ETag)
	}
}

// §  13.1.5.  If-Range
// §
// §     To evaluate a received If-Range header field containing an HTTP-date:
// §
// §     1.  If the HTTP-date validator provided is not a strong validator in
// §         the sense defined by Section 8.8.2.2, the condition is false.
// §
// §     2.  If the HTTP-date validator provided exactly matches the
// §         Last-Modified field value for the selected representation, the
// §         condition is true.
// §
// §     3.  Otherwise, the condition is false.
// §
// §     To evaluate a received If-Range header field containing an
// §     entity-tag:
// §
// §     1.  If the entity-tag validator provided exactly matches the ETag
// §         field value for the selected representation using the strong
// §         comparison function (Section 8.8.3.2), the condition is true.
// §
// §     2.  Otherwise, the condition is false.
func ifRangeMatches(value string, rep store.Representation) bool {
	if value == "" {
		return true
	}
	ifRange, err := rfc9110.ParseIfRange(value)
	if err != nil {
		return false
	}
	switch v := ifRange.(type) {
	case rfc9110.IfRangeDate:
		return !rep.LastModified.IsZero() &&
			v.Date == rfc9110.LastModifiedAt(rep.LastModified).Date
	case rfc9110.IfRangeETag:
		current := rfc9110.IfRangeETag{Tag: rep.ETag}
		return rep.ETag != "" && !v.Weak() && !current.Weak() && v.Tag == rep.ETag
	}
	return false
}

func sendFull(w http.ResponseWriter, r *http.Request, rep store.Representation) {
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Bytes)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(rep.Bytes)
	}
}

func sendUnsatisfiable(w http.ResponseWriter, length uint64) {
	w.Header().Del("Content-Type")
	w.Header().Set("Content-Range", rfc9110.UnsatisfiedContentRange(length))
	w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
}

// §  15.3.7.  206 Partial Content
// §
// §     If a single part is being transferred, the server generating the 206
// §     response MUST generate a Content-Range header field, describing what
// §     range of the selected representation is enclosed, and a content
// §     consisting of the range.
func sendSinglePart(w http.ResponseWriter, r *http.Request, rep store.Representation, br rfc9110.ByteRange) {
	length := uint64(len(rep.Bytes))
	w.Header().Set("Content-Range", rfc9110.ContentRange(br, rfc9110.KnownLength(length)))
	w.Header().Set("Content-Length", strconv.FormatUint(br.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method != http.MethodHead {
		w.Write(rep.Bytes[br.Start : br.End+1])
	}
}

// put stores the request body as the representation for the request path.
func (a *AlwaysRange) put(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == keysPath {
		reservedPath(w)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxPutBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "Body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		a.log.Debug().Err(err).Str("path", r.URL.Path).Msg("Could not read body")
		http.Error(w, "Could not read body", http.StatusBadRequest)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	existed := a.store.Has(r.URL.Path)
	rep := store.Representation{
		Key:          r.URL.Path,
		ContentType:  contentType,
		LastModified: time.Now().UTC().Truncate(time.Second),
		ETag:         EntityTag(body),
		Bytes:        body,
	}
	if err := a.store.Put(rep); err != nil {
		a.log.Error().Err(err).Str("path", rep.Key).Msg("Could not store representation")
		http.Error(w, "Could not store representation", http.StatusInternalServerError)
		return
	}
	a.log.Debug().Str("path", rep.Key).Int("bytes", len(body)).Msg("Stored representation")
	w.Header().Set("ETag", rep.ETag)
	if existed {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
}

func (a *AlwaysRange) purge(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == keysPath {
		reservedPath(w)
		return
	}
	if !a.store.Has(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	if err := a.store.Purge(r.URL.Path); err != nil {
		a.log.Error().Err(err).Str("path", r.URL.Path).Msg("Could not purge representation")
		http.Error(w, "Could not purge representation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reservedPath answers writes to the key listing, which no representation
// can be stored under.
func reservedPath(w http.ResponseWriter) {
	w.Header().Set("Allow", "GET")
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// EntityTag is a strong validator derived from the content.
func EntityTag(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf(`"%x"`, sum[:8])
}
