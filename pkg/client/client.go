// Package client - тонкая обертка над HTTP API: подставляет bearer token
// из хранилища и сбрасывает сессию при 401. Без ретраев и backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

const defaultPort = "8080"

var ErrUnauthorized = errors.New("unauthorized")

// APIError - любой неуспешный ответ сервера
type APIError struct {
	StatusCode int
	Message    string
	Errors     []model.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	// BaseURL задается явно и имеет приоритет над эвристикой
	BaseURL string
	// Hostname текущего окружения, для доступа с другого устройства
	Hostname string
}

// ResolveBaseURL выбирает адрес API: явная конфигурация, иначе хост
// окружения с известным портом бэкенда, иначе локальный дефолт
func ResolveBaseURL(cfg Config) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	if cfg.Hostname != "" && cfg.Hostname != "localhost" && cfg.Hostname != "127.0.0.1" {
		return fmt.Sprintf("http://%s:%s/api", cfg.Hostname, defaultPort)
	}
	return "http://localhost:" + defaultPort + "/api"
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	onUnauthorized func()
}

type Option func(*Client)

// WithHTTPClient подменяет транспорт, по умолчанию http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUnauthorizedHandler вызывается после сброса токена при 401,
// аналог принудительного перехода на страницу логина
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(cfg Config, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: ResolveBaseURL(cfg),
		http:    http.DefaultClient,
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope повторяет формат ответов сервера
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Count   int               `json:"count"`
	Data    json.RawMessage   `json:"data"`
	Errors  []model.FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Сессия мертва: чистим токен и отправляем на логин
		c.tokens.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Errors:     env.Errors,
		}
	}
	return &env, nil
}

func (c *Client) dataField(env *envelope, key string, out interface{}) error {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	raw, ok := data[key]
	if !ok {
		return fmt.Errorf("missing %q in response data", key)
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var task model.Task
	env, err := c.do(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return task, err
	}
	return task, c.dataField(env, "task", &task)
}

// Tasks возвращает задачи владельца токена, опционально по статусу
func (c *Client) Tasks(ctx context.Context, status string) ([]model.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	return tasks, c.dataField(env, "tasks", &tasks)
}

func (c *Client) Task(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var task model.Task
	env, err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil)
	if err != nil {
		return task, err
	}
	return task, c.dataField(env, "task", &task)
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req model.UpdateTaskRequest) (model.Task, error) {
	var task model.Task
	env, err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), req)
	if err != nil {
		return task, err
	}
	return task, c.dataField(env, "task", &task)
}

// MoveTask - перетаскивание карточки в другую колонку
func (c *Client) MoveTask(ctx context.Context, id uuid.UUID, status string) (model.Task, error) {
	return c.UpdateTask(ctx, id, model.UpdateTaskRequest{Status: status})
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil)
	return err
}

// Session - результат регистрации или входа
type Session struct {
	User  model.UserRef `json:"user"`
	Token string        `json:"token"`
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (Session, error) {
	return c.session(ctx, "/users/register", req)
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (Session, error) {
	return c.session(ctx, "/users/login", req)
}

func (c *Client) session(ctx context.Context, path string, req interface{}) (Session, error) {
	var s Session
	env, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return s, fmt.Errorf("failed to decode session: %w", err)
	}
	c.tokens.SetToken(s.Token)
	return s, nil
}

func (c *Client) Profile(ctx context.Context) (model.UserRef, error) {
	var user model.UserRef
	env, err := c.do(ctx, http.MethodGet, "/users/profile", nil)
	if err != nil {
		return user, err
	}
	return user, c.dataField(env, "user", &user)
}

// UpdateProfile проверяет совпадение пароля с подтверждением до похода
// на сервер, как это делала форма профиля
func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest, confirmPassword string) (model.UserRef, error) {
	var user model.UserRef
	if req.Password != "" && req.Password != confirmPassword {
		return user, &APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "Passwords do not match",
		}
	}

	env, err := c.do(ctx, http.MethodPut, "/users/profile", req)
	if err != nil {
		return user, err
	}
	return user, c.dataField(env, "user", &user)
}

// DeleteAccount удаляет аккаунт и локальную сессию
func (c *Client) DeleteAccount(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodDelete, "/users/profile", nil); err != nil {
		return err
	}
	return c.tokens.Clear()
}

func (c *Client) Logout() error {
	return c.tokens.Clear()
}
