package entitlement

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// UserExtractor resolves the acting user from the request, typically from
// an auth session or token middleware upstream.
type UserExtractor func(r *http.Request) (uuid.UUID, bool)

// Middleware gates an HTTP handler behind the user's monthly entitlement.
//
// Quota headers are set from the pre-action decision. On exhaustion it
// responds 402 Payment Required with a JSON body carrying limit and
// remaining so clients can render upgrade messaging distinct from a
// generic server error. Usage is recorded only when the wrapped handler
// completes with a success status: a 4xx/5xx response does not consume
// quota.
func Middleware(gate *Gate, userFrom UserExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userFrom(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			period := PeriodOf(gate.svc.now())
			decision, err := gate.svc.EvaluateAt(r.Context(), userID, period)
			if err != nil {
				if !gate.failOpen {
					http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
					return
				}
				gate.log.WarnContext(r.Context(), "entitlement store unavailable, failing open",
					"user_id", userID, "period", period, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			setQuotaHeaders(w, decision)

			if !decision.Permitted {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusPaymentRequired)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":     "monthly limit reached",
					"plan":      decision.PlanCode,
					"limit":     decision.Limit,
					"remaining": 0,
					"period":    decision.Period,
				})
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < http.StatusBadRequest {
				if _, err := gate.svc.usage.IncrementAndGet(r.Context(), userID, period); err != nil {
					gate.log.ErrorContext(r.Context(), "usage not recorded after successful action",
						"user_id", userID, "period", period, "error", err)
				}
			}
		})
	}
}

func setQuotaHeaders(w http.ResponseWriter, d Decision) {
	if d.IsUnlimited() {
		w.Header().Set("X-Quota-Limit", "unlimited")
		w.Header().Set("X-Quota-Remaining", "unlimited")
		return
	}
	w.Header().Set("X-Quota-Limit", strconv.FormatInt(d.Limit, 10))
	w.Header().Set("X-Quota-Remaining", strconv.FormatInt(d.Remaining, 10))
}

// statusRecorder captures the response status to decide whether the wrapped
// handler completed successfully.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
