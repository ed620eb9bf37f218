package list

import (
	"context"
	"log/slog"
	"net/http"

	"timetable-service/api"
	"timetable-service/internal/http-server/handlers"
	"timetable-service/internal/models"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type PendingLister interface {
	ListPending(ctx context.Context, p models.Principal) ([]*models.LessonView, error)
}

type Response struct {
	response.Response
	Lessons []api.PendingLessonResponse `json:"lessons"`
}

func New(log *slog.Logger, lister PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.approvals.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, ok := handlers.Principal(w, r, log)
		if !ok {
			return
		}

		lessons, err := lister.ListPending(r.Context(), p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list pending lessons")
			return
		}

		log.Debug("Pending lessons listed", slog.Int("count", len(lessons)))
		responseOK(w, r, lessons)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, lessons []*models.LessonView) {
	out := make([]api.PendingLessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, api.NewPendingLessonResponse(l))
	}

	render.JSON(w, r, Response{
		Lessons: out,
	})
}
