package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/clearance-management/internal/transport"
	"github.com/frahmantamala/clearance-management/internal/user"
	"github.com/frahmantamala/clearance-management/pkg/logger"
)

type ServiceAPI interface {
	UserStats(userID int64) (UserStats, error)
	AdminStats() (AdminStats, error)
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

// GetUserStats handles GET /requests/user-stats.
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.UserStats(u.ID)
	if err != nil {
		h.Logger.Error("GetUserStats: service error", "error", err, "user_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// GetAdminStats handles GET /requests/admin-stats (admin only, gated in the
// router).
func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.AdminStats()
	if err != nil {
		h.Logger.Error("GetAdminStats: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}
