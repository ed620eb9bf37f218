package delete

import (
	"context"
	"log/slog"
	"net/http"

	"timetable-service/internal/http-server/handlers"
	"timetable-service/internal/models"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
)

type LessonRemover interface {
	Remove(ctx context.Context, id int64, p models.Principal) error
}

func New(log *slog.Logger, remover LessonRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, ok := handlers.Principal(w, r, log)
		if !ok {
			return
		}

		id, err := handlers.IDParam(r, "id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		if err := remover.Remove(r.Context(), id, p); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete lesson")
			return
		}

		log.Info("Lesson deleted", slog.Int64("lesson_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
