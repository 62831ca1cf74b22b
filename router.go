package alwaysrange

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// keysPath lists the stored keys and is never a representation key.
const keysPath = "/.representations"

// NewRouter mounts the handler on every path, tags requests with an id and
// logs each response.
func NewRouter(a *AlwaysRange) chi.Router {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(a.log))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(logRequest))

	r.Get(keysPath, a.listKeys)
	r.Get("/*", a.ServeHTTP)
	r.Head("/*", a.ServeHTTP)
	r.Put("/*", a.ServeHTTP)
	r.Delete("/*", a.ServeHTTP)
	return r
}

// listKeys writes the stored keys, one per line.
func (a *AlwaysRange) listKeys(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	var keys strings.Builder
	a.store.Keys(prefix, func(key string) {
		keys.WriteString(key)
		keys.WriteByte('\n')
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(keys.String()))
}

func logRequest(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("range", r.Header.Get("Range")).
		Str("sourceIp", getRequestSourceIp(r)).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}
