package response

import (
	"encoding/json"
	"net/http"

	"jersey-stock-api/pkg/apierror"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries listing metadata.
type Meta struct {
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// JSON sends an enveloped JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	Raw(w, statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// JSONWithMeta sends an enveloped JSON response with listing metadata.
func JSONWithMeta(w http.ResponseWriter, statusCode int, data interface{}, limit int, total int64) {
	Raw(w, statusCode, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Limit: limit,
			Total: total,
		},
	})
}

// Raw writes v as JSON without the API envelope. The call-provider boundary
// endpoints answer in the provider's own shape and use this directly.
func Raw(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends an error response.
func Error(w http.ResponseWriter, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.InternalError("an unexpected error occurred")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	w.Write(apiErr.ToJSON())
}

// Attachment streams a downloadable file.
func Attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with the created resource.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}
