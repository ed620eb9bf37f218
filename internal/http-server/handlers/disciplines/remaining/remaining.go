package remaining

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"timetable-service/api"
	"timetable-service/internal/http-server/handlers"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type LedgerReader interface {
	RemainingHours(ctx context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error)
}

type Response struct {
	response.Response
	Remaining *api.RemainingResponse `json:"remaining,omitempty"`
}

// New answers the live hour counter of the lesson form. exclude_id leaves the
// lesson being edited out of the sum.
func New(log *slog.Logger, ledger LedgerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.disciplines.remaining.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if _, ok := handlers.Principal(w, r, log); !ok {
			return
		}

		disciplineID, err := handlers.IDParam(r, "id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		sectionID, err := handlers.IDParam(r, "section_id")
		if err != nil {
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		var excludeID *int64
		if raw := r.URL.Query().Get("exclude_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				handlers.BadRequest(w, r, log, response.INVALID_INPUT, "exclude_id must be a positive integer")
				return
			}
			excludeID = &id
		}

		remaining, err := ledger.RemainingHours(r.Context(), disciplineID, sectionID, excludeID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to compute remaining hours")
			return
		}

		render.JSON(w, r, Response{
			Remaining: &api.RemainingResponse{
				DisciplineID: disciplineID,
				SectionID:    sectionID,
				Remaining:    remaining,
			},
		})
	}
}
