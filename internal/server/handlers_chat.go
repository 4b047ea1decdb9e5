package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"trademind/internal/services/chat"
)

// handleChat handles POST /api/chat — free-form AI question, optionally
// grounded in a chart image and ticker context.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	var req struct {
		Message  string `json:"message"`
		ImageURL string `json:"image_url"`
		Ticker   string `json:"ticker"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		req.Ticker = "General"
	}

	response, err := s.app.ChatService.Chat(r.Context(), uc.UserID, req.Message, req.ImageURL, req.Ticker)
	if err != nil {
		if err == chat.ErrNotConfigured {
			WriteError(w, http.StatusServiceUnavailable, "Gemini API Key not configured")
			return
		}
		s.logger.Error().Err(err).Msg("Chat failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"response": response})
}

// handleAnalyze handles POST /api/analyze — strategy review of a chart
// image, cross-checked against calculated indicators.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	var req struct {
		ImageURL string `json:"image_url"`
		Mode     string `json:"mode"`
		Ticker   string `json:"ticker"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.ImageURL == "" {
		WriteError(w, http.StatusBadRequest, "image_url is required")
		return
	}

	record, err := s.app.ChatService.Analyze(r.Context(), uc.UserID, req.ImageURL, req.Mode, req.Ticker)
	if err != nil {
		if err == chat.ErrNotConfigured {
			WriteError(w, http.StatusServiceUnavailable, "Gemini API Key not configured")
			return
		}
		s.logger.Error().Err(err).Msg("Analysis failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	// The model is instructed to return raw JSON; pass it through as an
	// object when it complied, wrapped otherwise.
	var analysis map[string]interface{}
	if err := json.Unmarshal([]byte(record.Response), &analysis); err != nil {
		analysis = map[string]interface{}{"Strategy": record.Response}
	}
	analysis["id"] = record.ID
	WriteJSON(w, http.StatusOK, analysis)
}

// handleHistory handles GET /api/history — saved analyses newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.app.ChatService.History(r.Context(), uc.UserID, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list history")
		WriteError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"history": records})
}

// handleHistoryDelete handles DELETE /api/history/{id}.
func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	recordID := PathParam(r, "/api/history/", "")
	if recordID == "" {
		WriteError(w, http.StatusBadRequest, "record id is required")
		return
	}

	if err := s.app.Storage.PaperStore().DeleteAnalysis(r.Context(), uc.UserID, recordID); err != nil {
		WriteError(w, http.StatusForbidden, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
