package handler

import (
	"net/http"

	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// VoiceHandler accepts transcripts from the browser speech client.
type VoiceHandler struct {
	voiceService *service.VoiceService
	log          *logger.Logger
}

func NewVoiceHandler(voiceService *service.VoiceService, log *logger.Logger) *VoiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &VoiceHandler{voiceService: voiceService, log: log.With("handler", "voice")}
}

// TranscriptRequest carries one recognised utterance.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// Interpret handles POST /api/v1/voice/interpret
func (h *VoiceHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	res, err := h.voiceService.Interpret(r.Context(), req.Transcript)
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, res)
}

// Command handles POST /api/v1/voice/command
func (h *VoiceHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	res, err := h.voiceService.Execute(r.Context(), middleware.ActorFromContext(r.Context()), req.Transcript)
	if err != nil {
		writeServiceError(w, h.log, err, "jersey not found")
		return
	}
	response.OK(w, res)
}
