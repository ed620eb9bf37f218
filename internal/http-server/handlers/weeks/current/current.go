package current

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"timetable-service/api"
	"timetable-service/internal/http-server/handlers"
	"timetable-service/internal/models"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type WeekSelector interface {
	SelectWeek(ctx context.Context, cycleID int64, weekID *int64) (*models.Week, error)
}

type Response struct {
	response.Response
	Week *api.WeekResponse `json:"week,omitempty"`
}

func New(log *slog.Logger, selector WeekSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weeks.current.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if _, ok := handlers.Principal(w, r, log); !ok {
			return
		}

		cycleID, err := handlers.IDParam(r, "cycle_id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		var weekID *int64
		if raw := r.URL.Query().Get("week_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				handlers.BadRequest(w, r, log, response.INVALID_INPUT, "week_id must be a positive integer")
				return
			}
			weekID = &id
		}

		week, err := selector.SelectWeek(r.Context(), cycleID, weekID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to select week")
			return
		}

		responseOK(w, r, week)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, week *models.Week) {
	resp := api.NewWeekResponse(week)
	render.JSON(w, r, Response{
		Week: &resp,
	})
}
