package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"stayledger/internal/auth"
	"stayledger/internal/cache"
	"stayledger/internal/errors"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	inFlightTTL       = time.Minute
)

var inFlightMarker = []byte(`{"in_flight":true}`)

// cachedResponse stores the response for idempotent requests.
type cachedResponse struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
	InFlight    bool            `json:"in_flight,omitempty"`
}

// bodyRecorder tees the response body into a buffer.
type bodyRecorder struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bodyRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

// Idempotency replays the stored response of a POST that carries an Idempotency-Key
// already seen from the same caller on the same URL. A key whose first request is still running gets 409.
// Without Redis every request runs.
func Idempotency(store *cache.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := req.Header.Get(idempotencyHeader)
			if req.Method != http.MethodPost || key == "" {
				return next(c)
			}

			ctx := req.Context()
			cacheKey := idempotencyCacheKey(callerSubject(c), req.URL.Path, key)

			if data, _ := store.Get(ctx, cacheKey); data != nil {
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					if cached.InFlight {
						return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
							Error: "a request with this idempotency key is in progress",
							Code:  "IDEMPOTENCY_IN_PROGRESS",
						})
					}
					c.Response().Header().Set("Idempotent-Replayed", "true")
					return c.Blob(cached.StatusCode, cached.ContentType, cached.Body)
				}
			}

			claimed, _ := store.SetNX(ctx, cacheKey, inFlightMarker, inFlightTTL)
			if !claimed {
				return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
					Error: "a request with this idempotency key is in progress",
					Code:  "IDEMPOTENCY_IN_PROGRESS",
				})
			}

			res := c.Response()
			rec := &bodyRecorder{ResponseWriter: res.Writer, body: &bytes.Buffer{}}
			res.Writer = rec

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if res.Status >= http.StatusOK && res.Status < http.StatusInternalServerError && json.Valid(rec.body.Bytes()) {
				payload, merr := json.Marshal(cachedResponse{
					StatusCode:  res.Status,
					ContentType: res.Header().Get(echo.HeaderContentType),
					Body:        rec.body.Bytes(),
				})
				if merr == nil {
					_ = store.Set(ctx, cacheKey, payload, idempotencyTTL)
					return nil
				}
			}
			_ = store.Delete(ctx, cacheKey)
			return nil
		}
	}
}

func idempotencyCacheKey(subject, path, key string) string {
	return "idempotency:" + subject + ":" + path + ":" + key
}

// callerSubject is the token subject, or empty for unauthenticated routes.
func callerSubject(c echo.Context) string {
	token, _ := c.Get(ContextKeyUser).(*jwt.Token)
	claims, err := auth.ClaimsFromToken(token)
	if err != nil {
		return ""
	}
	return claims.Subject
}
