package editctx

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

type ContextProvider interface {
	EditContext(ctx context.Context, sectionID, weekID int64, p models.Principal) (*service.EditContext, error)
}

type Response struct {
	response.Response
	Context *api.EditContextResponse `json:"context,omitempty"`
}

func New(log *slog.Logger, provider ContextProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.grid.editctx.New"

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

		ec, err := provider.EditContext(r.Context(), sectionID, weekID, p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to load editing context")
			return
		}

		responseOK(w, r, ec)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, ec *service.EditContext) {
	resp := api.NewEditContextResponse(ec)
	render.JSON(w, r, Response{
		Context: &resp,
	})
}
