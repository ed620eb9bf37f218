package router

import (
	"log/slog"
	"net/http"

	approvalDecide "timetable-service/internal/http-server/handlers/approvals/decide"
	approvalList "timetable-service/internal/http-server/handlers/approvals/list"
	disciplineRemaining "timetable-service/internal/http-server/handlers/disciplines/remaining"
	gridEditCtx "timetable-service/internal/http-server/handlers/grid/editctx"
	gridGet "timetable-service/internal/http-server/handlers/grid/get"
	lessonCreate "timetable-service/internal/http-server/handlers/lessons/create"
	lessonDelete "timetable-service/internal/http-server/handlers/lessons/delete"
	lessonGet "timetable-service/internal/http-server/handlers/lessons/get"
	lessonUpdate "timetable-service/internal/http-server/handlers/lessons/update"
	weekCurrent "timetable-service/internal/http-server/handlers/weeks/current"
	"timetable-service/pkg/middleware/mwAuth"
	"timetable-service/pkg/middleware/mwLogger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// Service is everything the HTTP layer calls.
type Service interface {
	gridGet.GridBuilder
	gridEditCtx.ContextProvider
	weekCurrent.WeekSelector
	lessonCreate.LessonSaver
	lessonGet.LessonGetter
	lessonDelete.LessonRemover
	approvalList.PendingLister
	approvalDecide.Decider
	disciplineRemaining.LedgerReader
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, service Service, jwtSecret string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Group(func(r chi.Router) {
		r.Use(mwAuth.New(log, jwtSecret))

		// Timetable
		r.Get("/sections/{section_id}/weeks/{week_id}/grid", gridGet.New(log, service))
		r.Get("/sections/{section_id}/weeks/{week_id}/context", gridEditCtx.New(log, service))
		r.Get("/cycles/{cycle_id}/weeks/current", weekCurrent.New(log, service))

		// Lessons
		r.Post("/lessons", lessonCreate.New(log, service))
		r.Get("/lessons/{id}", lessonGet.New(log, service))
		r.Put("/lessons/{id}", lessonUpdate.New(log, service))
		r.Delete("/lessons/{id}", lessonDelete.New(log, service))

		// Approvals
		r.Get("/approvals", approvalList.New(log, service))
		r.Post("/approvals/{id}/{action}", approvalDecide.New(log, service))

		// Curriculum ledger
		r.Get("/disciplines/{id}/sections/{section_id}/remaining", disciplineRemaining.New(log, service))
	})

	return router
}
