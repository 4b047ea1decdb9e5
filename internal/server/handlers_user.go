package server

import (
	"net/http"

	"trademind/internal/storage/userdb"
)

// handleMe handles GET /api/me — the authenticated account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	user, err := s.app.Storage.UserStore().GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// handleSettings handles /api/settings:
// GET lists all settings, PUT upserts one.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.UserStore()

	switch r.Method {
	case http.MethodGet:
		settings, err := store.ListSettings(ctx, uc.UserID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list settings")
			return
		}
		out := make(map[string]string, len(settings))
		for _, st := range settings {
			out[st.Name] = st.Value
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": out})

	case http.MethodPut:
		var req struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := store.SetSetting(ctx, uc.UserID, req.Name, req.Value); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to save setting")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleSettingDelete handles DELETE /api/settings/{name}.
func (s *Server) handleSettingDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	name := PathParam(r, "/api/settings/", "")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "setting name is required")
		return
	}

	err := s.app.Storage.UserStore().DeleteSetting(r.Context(), uc.UserID, name)
	if err != nil && err != userdb.ErrSettingNotFound {
		WriteError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
