package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter mounts the REST API, the share-link entry point and the
// leaderboard websocket.
func NewRouter(quizHandler *QuizHandler, wsHandler *WSHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/", quizHandler.OpenSharedQuiz)
	r.Get("/ws", wsHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", quizHandler.CreateQuiz)
			r.Get("/", quizHandler.ListQuizzes)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", quizHandler.GetQuiz)
				r.Get("/share", quizHandler.Share)
				r.Get("/qr.png", quizHandler.QRCode)
				r.Post("/results", quizHandler.SubmitResult)
				r.Get("/results", quizHandler.Leaderboard)
				r.Get("/results/export", quizHandler.ExportResults)
				r.Post("/attempts", quizHandler.StartAttempt)
			})
		})
		r.Route("/attempts/{id}", func(r chi.Router) {
			r.Get("/", quizHandler.AttemptStatus)
			r.Post("/submit", quizHandler.SubmitAttempt)
			r.Delete("/", quizHandler.AbandonAttempt)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
