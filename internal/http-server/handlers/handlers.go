// Package handlers holds what every endpoint shares: path parameters,
// the caller's principal and the error envelope.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"timetable-service/internal/models"
	"timetable-service/pkg/middleware/mwAuth"
	"timetable-service/pkg/response"
	"timetable-service/pkg/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// IDParam reads a positive integer path parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}

	return id, nil
}

// Principal writes 401 and returns false when the request was not authenticated.
func Principal(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.Principal, bool) {
	p, err := mwAuth.PrincipalFromContext(r.Context())
	if err != nil {
		log.Error("principal is missing", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "authentication required"))
		return models.Principal{}, false
	}
	return p, true
}

func BadRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, code response.ErrCode, msg string) {
	log.Error("bad request", slog.String("reason", msg))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(string(code), msg))
}

// Fail writes the envelope for a service error. Unexpected errors are logged
// in full and answered with fallback.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	status, resp, known := response.FromError(err, fallback)
	if known {
		log.Warn("request rejected", slog.String("code", resp.Code), sl.Err(err))
	} else {
		log.Error(fallback, sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
