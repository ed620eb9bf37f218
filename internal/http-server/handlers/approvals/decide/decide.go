package decide

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
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Decider interface {
	Decide(ctx context.Context, id int64, action service.Action, p models.Principal) (*service.Decision, error)
}

type Response struct {
	response.Response
	Decision *api.DecisionResponse `json:"decision,omitempty"`
}

func New(log *slog.Logger, decider Decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.approvals.decide.New"

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

		action := service.Action(chi.URLParam(r, "action"))
		if action != service.ActionApprove && action != service.ActionReject {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, "action must be approve or reject")
			return
		}

		decision, err := decider.Decide(r.Context(), id, action, p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to decide on lesson")
			return
		}

		log.Info("Lesson decided",
			slog.Int64("lesson_id", id),
			slog.String("action", string(action)),
			slog.Bool("changed", decision.Changed),
		)
		responseOK(w, r, decision)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, decision *service.Decision) {
	resp := api.NewDecisionResponse(decision)
	render.JSON(w, r, Response{
		Decision: &resp,
	})
}
