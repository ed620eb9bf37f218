package get

import (
	"context"
	"log/slog"
	"net/http"

	"timetable-service/api"
	"timetable-service/internal/http-server/handlers"
	"timetable-service/internal/models"
	"timetable-service/internal/service"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type LessonGetter interface {
	LessonDetails(ctx context.Context, id int64, p models.Principal) (*service.LessonDetails, error)
}

type Response struct {
	response.Response
	Lesson *api.LessonDetailsResponse `json:"lesson,omitempty"`
}

func New(log *slog.Logger, getter LessonGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.get.New"

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

		details, err := getter.LessonDetails(r.Context(), id, p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to get lesson")
			return
		}

		responseOK(w, r, details)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, details *service.LessonDetails) {
	resp := api.NewLessonDetailsResponse(details)
	render.JSON(w, r, Response{
		Lesson: &resp,
	})
}
