package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit config wins",
			cfg:  Config{BaseURL: "https://api.example.com/api", Hostname: "10.0.0.5"},
			want: "https://api.example.com/api",
		},
		{
			name: "remote hostname heuristic",
			cfg:  Config{Hostname: "192.168.1.20"},
			want: "http://192.168.1.20:8080/api",
		},
		{
			name: "localhost falls back to default",
			cfg:  Config{Hostname: "localhost"},
			want: "http://localhost:8080/api",
		},
		{
			name: "loopback falls back to default",
			cfg:  Config{Hostname: "127.0.0.1"},
			want: "http://localhost:8080/api",
		},
		{
			name: "empty config",
			cfg:  Config{},
			want: "http://localhost:8080/api",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.cfg))
		})
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"tasks": []interface{}{}},
		})
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	tokens.SetToken("my-token")
	c := New(Config{BaseURL: server.URL}, tokens)

	_, err := c.Tasks(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer my-token", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"tasks": []interface{}{}},
		})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL}, NewMemoryTokenStore())

	_, err := c.Tasks(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedClearsTokenAndRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Not authorized"})
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	tokens.SetToken("stale-token")

	var redirected bool
	c := New(Config{BaseURL: server.URL}, tokens,
		WithUnauthorizedHandler(func() { redirected = true }))

	_, err := c.Tasks(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, tokens.Token(), "token should be cleared")
	assert.True(t, redirected, "unauthorized handler should run")
}

func TestClient_APIErrorCarriesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors": []map[string]string{
				{"field": "title", "message": "Title is required"},
			},
		})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL}, NewMemoryTokenStore())

	_, err := c.CreateTask(context.Background(), model.CreateTaskRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "title", apiErr.Errors[0].Field)
}

func TestClient_LoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Login successful",
			"data": map[string]interface{}{
				"user":  map[string]interface{}{"id": uuid.New().String(), "name": "U", "email": "u@example.com"},
				"token": "fresh-token",
			},
		})
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	c := New(Config{BaseURL: server.URL}, tokens)

	session, err := c.Login(context.Background(), model.LoginRequest{Email: "u@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", session.Token)
	assert.Equal(t, "fresh-token", tokens.Token())
}

func TestClient_UpdateProfileConfirmationMismatch(t *testing.T) {
	// До сервера дойти не должно
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called on confirmation mismatch")
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL}, NewMemoryTokenStore())

	_, err := c.UpdateProfile(context.Background(), model.UpdateProfileRequest{Password: "newpass"}, "other")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Passwords do not match", apiErr.Message)
}

func TestClient_MoveTaskSendsOnlyStatus(t *testing.T) {
	var gotBody map[string]interface{}
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"task": map[string]interface{}{"status": "completed"}},
		})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL}, NewMemoryTokenStore())
	id := uuid.New()

	task, err := c.MoveTask(context.Background(), id, "completed")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/tasks/"+id.String(), gotPath)
	assert.Equal(t, "completed", gotBody["status"])
	assert.Equal(t, "", gotBody["title"])
	assert.Equal(t, "completed", task.Status)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)

	assert.Empty(t, store.Token())

	require.NoError(t, store.SetToken("persisted"))
	assert.Equal(t, "persisted", store.Token())

	// Новый экземпляр видит тот же токен
	assert.Equal(t, "persisted", NewFileTokenStore(path).Token())

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Token())
	require.NoError(t, store.Clear()) // повторная очистка не ошибка
}
