package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"jersey-stock-api/internal/clients"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apierror.BadRequest("invalid JSON body")
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// writeServiceError maps service and repository errors onto API errors.
// Unexpected errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	if apiErr, ok := apierror.As(err); ok {
		response.Error(w, apiErr)
		return
	}

	var httpErr *clients.HTTPError
	switch {
	case service.IsNotFound(err):
		response.Error(w, apierror.NotFound(notFound))
	case service.IsValidation(err):
		response.Error(w, apierror.ValidationError(err.Error()))
	case errors.As(err, &httpErr):
		response.Error(w, apierror.BadGateway(httpErr.Error()))
	default:
		log.Error("request failed", "error", err)
		response.Error(w, apierror.InternalError(""))
	}
}
