package handler

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
	"jersey-stock-api/pkg/uid"

	"github.com/go-chi/chi/v5"
)

const maxImportBytes = 10 << 20

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	log              *logger.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{
		inventoryService: inventoryService,
		log:              log.With("handler", "inventory"),
	}
}

func filterFromQuery(r *http.Request) model.JerseyFilter {
	q := r.URL.Query()
	return model.JerseyFilter{
		Search:  q.Get("search"),
		Edition: model.Edition(q.Get("edition")),
		SortBy:  q.Get("sort"),
		Desc:    strings.EqualFold(q.Get("order"), "desc"),
	}
}

// jerseyID reads and validates the {id} URL parameter.
func jerseyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := uid.Normalize(chi.URLParam(r, "id"))
	if !ok {
		response.Error(w, apierror.BadRequest("id must be a valid UUID"))
		return "", false
	}
	return id, true
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.List(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.JSONWithMeta(w, http.StatusOK, items, len(items), int64(len(items)))
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, threshold, err := h.inventoryService.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, map[string]interface{}{
		"threshold": threshold,
		"items":     items,
	})
}

// Create handles POST /api/v1/inventory. An empty body creates a row with
// the add-row defaults.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.JerseyPatch
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &fields); err != nil {
			response.Error(w, err)
			return
		}
	}

	created, err := h.inventoryService.Create(r.Context(), middleware.ActorFromContext(r.Context()), fields)
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.Created(w, created)
}

// Get handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}
	j, err := h.inventoryService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, j)
}

// Update handles PATCH /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}

	var patch model.JerseyPatch
	if err := decodeJSON(r, &patch); err != nil {
		response.Error(w, err)
		return
	}

	updated, err := h.inventoryService.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, updated)
}

// AdjustRequest carries quantity deltas.
type AdjustRequest struct {
	QtyInventoryDelta int `json:"qty_inventory_delta"`
	QtyDueLVADelta    int `json:"qty_due_lva_delta"`
}

// Adjust handles POST /api/v1/inventory/{id}/adjust
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}

	var req AdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	updated, err := h.inventoryService.Adjust(r.Context(), middleware.ActorFromContext(r.Context()), id, req.QtyInventoryDelta, req.QtyDueLVADelta)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, updated)
}

// TurnIn handles POST /api/v1/inventory/{id}/turn-in
func (h *InventoryHandler) TurnIn(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}

	updated, err := h.inventoryService.TurnIn(r.Context(), middleware.ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, updated)
}

// SendToLeagueRequest is the body of a send-to-league action.
type SendToLeagueRequest struct {
	Amount int `json:"amount"`
}

// SendToLeague handles POST /api/v1/inventory/{id}/send-to-league
func (h *InventoryHandler) SendToLeague(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}

	var req SendToLeagueRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	updated, err := h.inventoryService.SendToLeague(r.Context(), middleware.ActorFromContext(r.Context()), id, req.Amount)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, updated)
}

// ReorderDraft handles GET /api/v1/inventory/{id}/reorder-draft?ai=true
func (h *InventoryHandler) ReorderDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := jerseyID(w, r)
	if !ok {
		return
	}

	rewrite, _ := strconv.ParseBool(r.URL.Query().Get("ai"))
	d, err := h.inventoryService.ReorderDraft(r.Context(), id, rewrite)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, d)
}

// Import handles POST /api/v1/inventory/import. The body is either a raw
// CSV/XLSX upload or a multipart form with a "file" field.
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	body, name, err := importPayload(r)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	var res *service.ImportResult
	if isXLSX(name, r.Header.Get("Content-Type"), body) {
		res, err = h.inventoryService.ImportXLSX(r.Context(), actor, bytes.NewReader(body))
	} else {
		res, err = h.inventoryService.ImportCSV(r.Context(), actor, bytes.NewReader(body))
	}
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.Created(w, res)
}

func importPayload(r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		body, err := io.ReadAll(file)
		return body, header.Filename, err
	}
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	return body, "", err
}

// isXLSX recognises workbooks by extension, content type or the zip magic.
func isXLSX(filename, contentType string, body []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return true
	}
	if strings.Contains(contentType, "spreadsheetml") {
		return true
	}
	return bytes.HasPrefix(body, []byte("PK\x03\x04"))
}

// Export handles GET /api/v1/inventory/export?format=csv|xlsx
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	stamp := time.Now().UTC().Format("20060102")

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "csv":
		body, err := h.inventoryService.ExportCSV(r.Context(), filter)
		if err != nil {
			writeServiceError(w, h.log, err, "")
			return
		}
		response.Attachment(w, "text/csv; charset=utf-8", "inventory_"+stamp+".csv", body)
	case "xlsx":
		body, err := h.inventoryService.ExportXLSX(r.Context(), filter)
		if err != nil {
			writeServiceError(w, h.log, err, "")
			return
		}
		response.Attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "inventory_"+stamp+".xlsx", body)
	default:
		response.Error(w, apierror.BadRequest("format must be csv or xlsx"))
	}
}
