// Package response writes the JSON envelopes used by every API endpoint.
package response

import (
	"encoding/json"
	"log"
	"mime"
	"net/http"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse wraps a successful payload.
type SuccessResponse struct {
	Data any `json:"data"`
}

// PaginatedResponse wraps one page of a list.
type PaginatedResponse struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[API] Failed to encode response: %v", err)
		}
	}
}

// Success writes a 200 envelope.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// UnprocessableEntity writes a 422.
func UnprocessableEntity(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnprocessableEntity, err)
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// BadGateway writes a 502.
func BadGateway(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadGateway, err)
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, err error) {
	Error(w, http.StatusServiceUnavailable, err)
}

// Paginated writes one page of a list.
func Paginated(w http.ResponseWriter, data any, page, pageSize, totalCount int) {
	totalPages := 1
	if pageSize > 0 {
		totalPages = max((totalCount+pageSize-1)/pageSize, 1)
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}

// Binary writes raw bytes, optionally as a download.
func Binary(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[API] Failed to write response body: %v", err)
	}
}
