package request

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/clearance-management/internal/transport"
	"github.com/frahmantamala/clearance-management/internal/user"
	"github.com/frahmantamala/clearance-management/pkg/logger"
)

const maxUploadMemory = 32 << 20

type ServiceAPI interface {
	Create(requester *user.User, dto CreateRequestDTO, files []*multipart.FileHeader) (*ClearanceRequest, error)
	ListFor(u *user.User) ([]*ClearanceRequest, error)
	GetByID(id int64, u *user.User) (*ClearanceRequest, error)
	Review(id int64, dto ReviewDTO, reviewer *user.User) (*ClearanceRequest, error)
	AppendComment(id int64, author *user.User, dto CommentDTO) (*Comment, error)
	Delete(id int64, caller *user.User) (*ClearanceRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// CreateRequest handles the multipart POST /requests form: text fields plus
// up to five files under the "documents" key.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.Logger.Error("CreateRequest: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto := CreateRequestDTO{
		FullName:      r.FormValue("fullName"),
		Email:         r.FormValue("email"),
		ClearanceType: r.FormValue("clearanceType"),
		Reason:        r.FormValue("reason"),
		Description:   r.FormValue("description"),
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["documents"]
	}

	req, err := h.Service.Create(u, dto, files)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "user_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

// GetRequests handles GET /requests with admin-sees-all scoping.
func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Service.ListFor(u)
	if err != nil {
		h.Logger.Error("GetRequests: service error", "error", err, "user_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /requests/{id}.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	req, err := h.Service.GetByID(id, u)
	if err != nil {
		h.Logger.Error("GetRequest: service error", "error", err, "request_id", id, "user_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// UpdateStatus handles PUT /requests/{id}; it runs the same transition as
// ReviewRequest so both paths stamp the full review quadruple.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, http.StatusOK, func(req *ClearanceRequest) interface{} {
		return req
	})
}

// ReviewRequest handles POST /requests/{id}/review.
func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, http.StatusOK, func(req *ClearanceRequest) interface{} {
		return map[string]interface{}{
			"message": "Request reviewed successfully",
			"request": req,
		}
	})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, status int, shape func(*ClearanceRequest) interface{}) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto ReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("review: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Review(id, dto, u)
	if err != nil {
		h.Logger.Error("review: service error", "error", err, "request_id", id, "reviewer_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, status, shape(req))
}

// AddComment handles POST /requests/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto CommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddComment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.Service.AppendComment(id, u, dto)
	if err != nil {
		h.Logger.Error("AddComment: service error", "error", err, "request_id", id, "author_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// DeleteRequest handles DELETE /requests/{id}.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.requestID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	deleted, err := h.Service.Delete(id, u)
	if err != nil {
		h.Logger.Error("DeleteRequest: service error", "error", err, "request_id", id, "admin_id", u.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted.ID})
}

func (h *Handler) requestID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
