package get

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

type GridBuilder interface {
	BuildGrid(ctx context.Context, sectionID, weekID int64, p models.Principal) (*models.Grid, error)
}

type Response struct {
	response.Response
	Grid *api.GridResponse `json:"grid,omitempty"`
}

func New(log *slog.Logger, builder GridBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.grid.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, ok := handlers.Principal(w, r, log)
		if !ok {
			return
		}

		sectionID, err := handlers.IDParam(r, "section_id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		weekID, err := handlers.IDParam(r, "week_id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		grid, err := builder.BuildGrid(r.Context(), sectionID, weekID, p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to build timetable")
			return
		}

		log.Debug("Timetable built", slog.Int64("section_id", sectionID), slog.Int64("week_id", weekID))
		responseOK(w, r, grid)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, grid *models.Grid) {
	resp := api.NewGridResponse(grid)
	render.JSON(w, r, Response{
		Grid: &resp,
	})
}
