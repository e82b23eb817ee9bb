package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"promette/internal/bootstrap/logging"
	correspondenceuc "promette/internal/usecase/correspondence"
)

// NewHandler builds the REST surface of the workflow engine.
func NewHandler(svc *correspondenceuc.Service) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)

	r.Route("/correspondence", func(r chi.Router) {
		r.Post("/", h.create)
		r.Post("/search", h.search)
		r.Get("/summary", h.summary)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Post("/transition", h.transition)
			r.Post("/edit", h.edit)
			r.Get("/receipt", h.receipt)
		})
	})
	r.Get("/positions/search", h.searchPositions)

	return r
}

// requestIDMiddleware tags every request with a uuid for log correlation
// and echoes it back in X-Request-ID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.Info(ctx, "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}
