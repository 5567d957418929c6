package request

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/storage"
	"github.com/frahmantamala/clearance-management/internal/user"
)

// Repository defines the data access methods for clearance requests. The
// store is the single writer of truth: services never cache request state
// across calls.
type Repository interface {
	Create(req *ClearanceRequest) error
	GetByID(id int64) (*ClearanceRequest, error)
	GetByRequesterID(requesterID int64) ([]*ClearanceRequest, error)
	GetAll() ([]*ClearanceRequest, error)
	// UpdateReview atomically sets status, review comment, reviewer and
	// review time, but only while the row is still Pending. Returns
	// internal.ErrAlreadyReviewed when the guard does not match.
	UpdateReview(id int64, status Status, reviewComment string, reviewerID int64, reviewedAt time.Time) error
	AppendComment(c *Comment) error
	Delete(id int64) error
}

// DocumentSaver is the slice of the document store the service needs.
type DocumentSaver interface {
	Save(fh *multipart.FileHeader) (storage.SavedDocument, error)
	Remove(filenames []string)
}

type Service struct {
	repo         Repository
	documents    DocumentSaver
	maxDocuments int
	logger       *slog.Logger
}

func NewService(repo Repository, documents DocumentSaver, maxDocuments int, logger *slog.Logger) *Service {
	if maxDocuments <= 0 {
		maxDocuments = MaxDocuments
	}
	return &Service{
		repo:         repo,
		documents:    documents,
		maxDocuments: maxDocuments,
		logger:       logger,
	}
}

// Create persists a new request owned by the caller. Files are written to
// the document store first; if the database insert fails they are removed
// again so no orphan files accumulate.
func (s *Service) Create(requester *user.User, dto CreateRequestDTO, files []*multipart.FileHeader) (*ClearanceRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("request validation failed", "user_id", requester.ID)
		return nil, err
	}

	if len(files) > s.maxDocuments {
		return nil, internal.NewValidationError(
			fmt.Sprintf("at most %d documents may be attached", s.maxDocuments),
			internal.ErrCodeTooManyDocuments,
		)
	}

	docs := make([]Document, 0, len(files))
	saved := make([]string, 0, len(files))
	for i, fh := range files {
		doc, err := s.documents.Save(fh)
		if err != nil {
			s.documents.Remove(saved)
			s.logger.Error("failed to store document", "error", err, "filename", fh.Filename)
			return nil, err
		}
		saved = append(saved, doc.Filename)
		docs = append(docs, Document{
			Filename:    doc.Filename,
			StoragePath: doc.StoragePath,
			Position:    i,
		})
	}

	req := &ClearanceRequest{
		RequesterID:   requester.ID,
		FullName:      dto.FullName,
		Email:         dto.Email,
		ClearanceType: dto.ClearanceType,
		Reason:        dto.Reason,
		Description:   dto.Description,
		Status:        StatusPending,
		Documents:     docs,
	}

	if err := s.repo.Create(req); err != nil {
		s.documents.Remove(saved)
		s.logger.Error("failed to create request", "error", err, "user_id", requester.ID)
		return nil, internal.NewInternalError("failed to create clearance request", err)
	}

	s.logger.Info("clearance request created",
		"request_id", req.ID,
		"user_id", requester.ID,
		"clearance_type", req.ClearanceType,
		"documents", len(docs))

	return req, nil
}

// ListFor returns all requests for admins and only the caller's own
// otherwise. Scoping lives here, at the query layer, not in a handler.
func (s *Service) ListFor(u *user.User) ([]*ClearanceRequest, error) {
	var (
		requests []*ClearanceRequest
		err      error
	)

	if u.IsAdmin() {
		requests, err = s.repo.GetAll()
	} else {
		requests, err = s.repo.GetByRequesterID(u.ID)
	}

	if err != nil {
		s.logger.Error("failed to list requests", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to list clearance requests", err)
	}

	// an empty result must serialize as [], not null
	if requests == nil {
		requests = []*ClearanceRequest{}
	}

	return requests, nil
}

// GetByID fetches one request. Non-admins may only fetch their own.
func (s *Service) GetByID(id int64, u *user.User) (*ClearanceRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !u.IsAdmin() && !req.IsOwnedBy(u) {
		s.logger.Warn("request access denied", "request_id", id, "user_id", u.ID, "owner_id", req.RequesterID)
		return nil, internal.ErrNotRequestOwner
	}

	return req, nil
}

// Review is the single lifecycle transition. Both the status-update and the
// review endpoints converge here, so the review quadruple (status, comment,
// reviewer, time) is always stamped together. Terminal states are locked.
func (s *Service) Review(id int64, dto ReviewDTO, reviewer *user.User) (*ClearanceRequest, error) {
	if !reviewer.IsAdmin() {
		s.logger.Warn("review denied: not an admin", "request_id", id, "user_id", reviewer.ID)
		return nil, internal.ErrAdminOnly
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !req.CanBeReviewed() {
		s.logger.Warn("review denied: request already reviewed",
			"request_id", id, "status", req.Status)
		return nil, internal.ErrAlreadyReviewed
	}

	reviewedAt := time.Now()
	if err := s.repo.UpdateReview(id, dto.Status, dto.ReviewComment, reviewer.ID, reviewedAt); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update request status", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to review clearance request", err)
	}

	s.logger.Info("clearance request reviewed",
		"request_id", id,
		"status", dto.Status,
		"reviewer_id", reviewer.ID)

	updated, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to reload reviewed request", err)
	}
	return updated, nil
}

// AppendComment adds one comment; appends are single inserts so concurrent
// calls are linearized by the database and never overwrite each other.
func (s *Service) AppendComment(id int64, author *user.User, dto CommentDTO) (*Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.ErrRequestNotFound
	}

	comment := &Comment{
		RequestID: id,
		AuthorID:  author.ID,
		Text:      dto.Text,
		CreatedAt: time.Now(),
	}

	if err := s.repo.AppendComment(comment); err != nil {
		s.logger.Error("failed to append comment", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to add comment", err)
	}

	s.logger.Info("comment appended", "request_id", id, "author_id", author.ID)
	return comment, nil
}

// Delete hard-deletes a request with its documents and comments. Admin-only
// and irreversible.
func (s *Service) Delete(id int64, caller *user.User) (*ClearanceRequest, error) {
	if !caller.IsAdmin() {
		s.logger.Warn("delete denied: not an admin", "request_id", id, "user_id", caller.ID)
		return nil, internal.ErrAdminOnly
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to delete clearance request", err)
	}

	filenames := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		filenames[i] = d.Filename
	}
	s.documents.Remove(filenames)

	s.logger.Info("clearance request deleted", "request_id", id, "admin_id", caller.ID)
	return req, nil
}
