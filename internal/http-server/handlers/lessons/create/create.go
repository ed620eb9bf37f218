package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"timetable-service/api"
	"timetable-service/internal/http-server/handlers"
	"timetable-service/internal/models"
	"timetable-service/internal/service"
	"timetable-service/pkg/response"
	"timetable-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type LessonSaver interface {
	Save(ctx context.Context, in service.LessonInput, p models.Principal) (*models.LessonBlock, error)
}

type Request struct {
	api.LessonRequest
}

type Response struct {
	response.Response
	Lesson *api.LessonResponse `json:"lesson,omitempty"`
}

var validate = validator.New()

func New(log *slog.Logger, saver LessonSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, ok := handlers.Principal(w, r, log)
		if !ok {
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("Invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
			handlers.BadRequest(w, r, log, response.INVALID_INPUT, err.Error())
			return
		}

		lesson, err := saver.Save(r.Context(), req.Input(nil), p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create lesson")
			return
		}

		log.Info("Lesson created", slog.Int64("lesson_id", lesson.ID), slog.String("status", string(lesson.Status)))

		render.Status(r, http.StatusCreated)
		responseOK(w, r, lesson)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, lesson *models.LessonBlock) {
	resp := api.NewLessonResponse(lesson)
	render.JSON(w, r, Response{
		Lesson: &resp,
	})
}
