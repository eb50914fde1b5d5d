package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	logger = logging.OrDefault(logger).Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerCatalogRoutes(mux, handler)
	registerAnalyticsRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
