package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

const (
	maxNameLen     = 50
	minPasswordLen = 6
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Handler обслуживает /api/users: регистрацию, вход и профиль
type Handler struct {
	users     repo.UserRepository
	jwt       *JWTManager
	passwords *PasswordManager
	logger    *zap.Logger
}

func NewHandler(users repo.UserRepository, jwt *JWTManager, passwords *PasswordManager, logger *zap.Logger) *Handler {
	return &Handler{
		users:     users,
		jwt:       jwt,
		passwords: passwords,
		logger:    logger,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	var errs []model.FieldError
	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "Name is required"})
	} else if utf8.RuneCountInString(name) > maxNameLen {
		errs = append(errs, model.FieldError{Field: "name", Message: "Name cannot exceed 50 characters"})
	}
	errs = append(errs, validateEmail(req.Email)...)
	if len(req.Password) < minPasswordLen {
		errs = append(errs, model.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, r, errs)
		return
	}

	hash, err := h.passwords.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during registration")
		return
	}

	user, err := h.users.Create(r.Context(), model.User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			respond.Error(w, r, http.StatusConflict, "User with this email already exists")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during registration")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during registration")
		return
	}

	respond.Success(w, r, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  user.Ref(),
		"token": token,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			respond.Error(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during login")
		return
	}

	if !h.passwords.VerifyPassword(user.PasswordHash, req.Password) {
		respond.Error(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during login")
		return
	}

	respond.Success(w, r, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  user.Ref(),
		"token": token,
	})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}
	respond.Success(w, r, http.StatusOK, "", map[string]interface{}{"user": user.Ref()})
}

// UpdateProfile меняет только присутствующие непустые поля,
// по той же политике, что и обновление задач
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	var errs []model.FieldError
	if name := strings.TrimSpace(req.Name); name != "" {
		if utf8.RuneCountInString(name) > maxNameLen {
			errs = append(errs, model.FieldError{Field: "name", Message: "Name cannot exceed 50 characters"})
		} else {
			user.Name = name
		}
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if !emailRe.MatchString(email) {
			errs = append(errs, model.FieldError{Field: "email", Message: "Please provide a valid email"})
		} else {
			user.Email = strings.ToLower(email)
		}
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLen {
			errs = append(errs, model.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
		} else {
			hash, err := h.passwords.HashPassword(req.Password)
			if err != nil {
				h.logger.Error("failed to hash password", zap.Error(err))
				respond.Error(w, r, http.StatusInternalServerError, "Server error during profile update")
				return
			}
			user.PasswordHash = hash
		}
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, r, errs)
		return
	}

	updated, err := h.users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			respond.Error(w, r, http.StatusConflict, "User with this email already exists")
			return
		}
		h.logger.Error("failed to update user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during profile update")
		return
	}

	respond.Success(w, r, http.StatusOK, "Profile updated successfully", map[string]interface{}{
		"user": updated.Ref(),
	})
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to delete user", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error during account deletion")
		return
	}

	respond.Success(w, r, http.StatusOK, "Account deleted successfully", nil)
}

func validateEmail(email string) []model.FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []model.FieldError{{Field: "email", Message: "Email is required"}}
	}
	if !emailRe.MatchString(email) {
		return []model.FieldError{{Field: "email", Message: "Please provide a valid email"}}
	}
	return nil
}
