package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/transport"
	"github.com/frahmantamala/clearance-management/internal/user"
	"github.com/frahmantamala/clearance-management/pkg/logger"
)

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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware resolves the bearer token to a user and stores it in the
// request context. Token expiry is surfaced with the expired marker so
// clients log out instead of retrying.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		u, err := h.Service.ResolveUser(claims)
		if err != nil {
			h.Logger.Warn("auth middleware: token user no longer exists", "user_id", claims.UserID)
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
	})
}

// RequireAdmin gates admin-only routes. Must be mounted after AuthMiddleware;
// it fails closed for any role other than admin.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := user.FromContext(r.Context())
		if !ok || u == nil {
			h.Logger.Error("admin gate reached without resolved identity")
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !u.IsAdmin() {
			h.Logger.Warn("admin access denied", "user_id", u.ID, "role", u.Role)
			h.HandleServiceError(w, internal.ErrAdminOnly)
			return
		}

		next.ServeHTTP(w, r)
	})
}
