package mwAuth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"timetable-service/internal/models"
	"timetable-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const principalKey contextKey = "principal"

var ErrNoPrincipal = errors.New("no principal in context")

// Claims is the token payload issued by the authentication service.
type Claims struct {
	Role         string `json:"role"`
	InstructorID *int64 `json:"instructor_id,omitempty"`
	jwt.RegisteredClaims
}

// New rejects requests without a valid HS256 bearer token and stores the
// resulting models.Principal in the request context.
func New(log *slog.Logger, secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/auth"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			principal, err := ParseToken(bearer(r), secret)
			if err != nil {
				log.Warn("rejected request",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("reason", err.Error()),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "invalid or missing token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		}

		return http.HandlerFunc(fn)
	}
}

func bearer(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ParseToken(tokenString, secret string) (models.Principal, error) {
	if tokenString == "" {
		return models.Principal{}, errors.New("authorization header required")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Principal{}, err
	}
	if !token.Valid {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Principal{}, errors.New("invalid subject claim")
	}

	p := models.Principal{
		UserID: userID,
		Role:   models.ParseRole(claims.Role),
	}
	if claims.InstructorID != nil && *claims.InstructorID > 0 {
		id := *claims.InstructorID
		p.InstructorID = &id
	}

	return p, nil
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (models.Principal, error) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	if !ok {
		return models.Principal{}, ErrNoPrincipal
	}
	return p, nil
}
