package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/clearance-management/internal/transport"
	"github.com/frahmantamala/clearance-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByID(id int64) (*User, error)
	ListUsers() ([]ListEntry, error)
	DeleteUser(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok || u == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// re-fetch so a stale context copy never leaks outdated fields
	fresh, err := h.Service.GetByID(u.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: lookup failed", "user_id", u.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, fresh)
}

// GetUsers handles GET /users (admin only, gated in the router)
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers()
	if err != nil {
		h.Logger.Error("GetUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /users/{id} (admin only, gated in the router)
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("DeleteUser: invalid user ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.Service.DeleteUser(id); err != nil {
		h.Logger.Error("DeleteUser: service error", "error", err, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
