package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type ctxKey string

const userKey ctxKey = "user"

// Middleware проверяет bearer token и кладет пользователя в контекст.
// Без валидного токена до хэндлеров запрос не доходит.
type Middleware struct {
	jwt   *JWTManager
	users repo.UserRepository
}

func NewMiddleware(jwt *JWTManager, users repo.UserRepository) *Middleware {
	return &Middleware{jwt: jwt, users: users}
}

func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		userID, err := m.jwt.ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		// Токен может пережить удаление аккаунта
		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey).(model.User)
	return u, ok
}
