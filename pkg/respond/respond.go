package respond

import (
	"encoding/json"
	"net/http"
)

// Envelope - единый формат всех ответов API
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(env)
}

func Success(w http.ResponseWriter, r *http.Request, code int, message string, data interface{}) {
	JSON(w, r, code, Envelope{Success: true, Message: message, Data: data})
}

// List дополняет успешный ответ количеством элементов
func List(w http.ResponseWriter, r *http.Request, count int, data interface{}) {
	JSON(w, r, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, Envelope{Success: false, Message: message})
}

// ValidationFailed возвращает 400 с поименным списком нарушений
func ValidationFailed(w http.ResponseWriter, r *http.Request, errs interface{}) {
	JSON(w, r, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}
