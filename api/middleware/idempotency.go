package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/api/responses"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/catalog-backend/pkg/redis"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	idempotencyReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 255
	maxIdempotentBodyBytes  = 1 << 20

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 72 * time.Hour
	// a claim that outlives this is treated as abandoned
	pendingIdempotencyTTL = 2 * time.Minute
)

type idempotencyRoute struct {
	method string
	path   string
	prefix bool
	ttl    time.Duration
}

func (r idempotencyRoute) matches(method, path string) bool {
	if r.method != method {
		return false
	}
	if r.prefix {
		return strings.HasPrefix(path, r.path)
	}
	return path == r.path
}

// Matched against r.URL.Path: group middleware runs before the subrouter
// resolves its pattern.
var idempotencyRoutes = []idempotencyRoute{
	{method: http.MethodPost, path: "/api/v1/product-pricing/bulk", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/product-pricing/import", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/product-variants/bulk-create", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/product-variants/combinations", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/products", prefix: true, ttl: defaultIdempotencyTTL},
}

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
	RequestID   string            `json:"request_id,omitempty"`
}

// Idempotency makes the writes in idempotencyRoutes replayable. The first
// request under a key claims it, a finished 2xx/4xx response is stored and
// replayed for the same body, and a 5xx releases the claim so the caller can
// retry. A nil store disables the middleware.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, r.URL.Path)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if len(clientKey) > maxIdempotencyKeyLength {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBodyBytes))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body unreadable"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			scope := idempotencyScope(r)

			existing, err := loadRecord(ctx, store, scope, clientKey)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if existing == nil {
				claim, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
				claimed, claimErr := store.Claim(ctx, scope, clientKey, claim, pendingIdempotencyTTL)
				if claimErr != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, claimErr, "claim idempotency key"))
					return
				}
				if !claimed {
					// lost the race to a concurrent request
					if existing, err = loadRecord(ctx, store, scope, clientKey); err != nil {
						responses.WriteError(ctx, logg, w, err)
						return
					}
				}
			}
			if existing != nil {
				replayRecord(ctx, w, logg, existing, requestHash)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				if delErr := store.Release(ctx, scope, clientKey); delErr != nil {
					logError(ctx, logg, "idempotency.release_failed", delErr)
				}
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
				RequestID:   RequestIDFromContext(ctx),
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logError(ctx, logg, "idempotency.marshal_failed", err)
				return
			}
			if err := store.Save(ctx, scope, clientKey, payload, ttl); err != nil {
				logError(ctx, logg, "idempotency.persist_failed", err)
			}
		})
	}
}

func loadRecord(ctx context.Context, store pkgredis.IdempotencyStore, scope, clientKey string) (*idempotencyRecord, error) {
	stored, found, err := store.Load(ctx, scope, clientKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if !found {
		return nil, nil
	}
	var record idempotencyRecord
	if err := json.Unmarshal(stored, &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &record, nil
}

func replayRecord(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, record *idempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.Pending {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
		return
	}

	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "original_request_id", record.RequestID), "idempotency.replayed")
	}
	w.Header().Set(idempotencyReplayHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// idempotencyScope keeps keys per caller and endpoint.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routeTTL(method, path string) (time.Duration, bool) {
	for _, route := range idempotencyRoutes {
		if route.matches(method, path) {
			return route.ttl, true
		}
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
