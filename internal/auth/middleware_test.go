package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestMiddleware_RequireUser(t *testing.T) {
	jwtManager := NewJWTManager([]byte("test-secret"), time.Hour)
	user := model.User{ID: uuid.New(), Name: "Test", Email: "test@example.com"}

	validToken, err := jwtManager.GenerateToken(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		setupMock  func(*MockUserRepository)
		wantCode   int
		wantUser   bool
	}{
		{
			name:       "valid token passes user through",
			authHeader: "Bearer " + validToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, user.ID).Return(user, nil)
			},
			wantCode: http.StatusOK,
			wantUser: true,
		},
		{
			name:     "missing header",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "token for deleted account",
			authHeader: "Bearer " + validToken,
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, user.ID).Return(model.User{}, repo.ErrorNotFound)
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}
			mw := NewMiddleware(jwtManager, mockRepo)

			var gotUser model.User
			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			mw.RequireUser(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantUser, called, "handler invocation")
			if tt.wantUser {
				assert.Equal(t, user.ID, gotUser.ID)
			}
		})
	}
}
