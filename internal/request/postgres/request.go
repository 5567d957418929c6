package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/request"
)

// RequestRepository implements the request.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

// Create saves a request together with its documents in one transaction.
func (r *RequestRepository) Create(req *request.ClearanceRequest) error {
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	return r.db.Create(req).Error
}

func (r *RequestRepository) GetByID(id int64) (*request.ClearanceRequest, error) {
	var req request.ClearanceRequest
	err := r.withRequesterName(r.db).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("clearance_requests.id = ?", id).
		First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetByRequesterID returns one user's requests in insertion order.
func (r *RequestRepository) GetByRequesterID(requesterID int64) ([]*request.ClearanceRequest, error) {
	var requests []*request.ClearanceRequest
	err := r.withRequesterName(r.db).
		Preload("Documents").
		Preload("Comments").
		Where("clearance_requests.requester_id = ?", requesterID).
		Order("clearance_requests.id ASC").
		Find(&requests).Error
	return requests, err
}

// GetAll returns every request, admin scope, in insertion order.
func (r *RequestRepository) GetAll() ([]*request.ClearanceRequest, error) {
	var requests []*request.ClearanceRequest
	err := r.withRequesterName(r.db).
		Preload("Documents").
		Preload("Comments").
		Order("clearance_requests.id ASC").
		Find(&requests).Error
	return requests, err
}

// UpdateReview stamps the full review quadruple in a single guarded UPDATE.
// The status guard makes concurrent reviews of the same request lose cleanly
// instead of silently overwriting the first decision.
func (r *RequestRepository) UpdateReview(id int64, status request.Status, reviewComment string, reviewerID int64, reviewedAt time.Time) error {
	result := r.db.Model(&request.ClearanceRequest{}).
		Where("id = ? AND status = ?", id, request.StatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"review_comment": reviewComment,
			"reviewer_id":    reviewerID,
			"reviewed_at":    reviewedAt,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrAlreadyReviewed
	}
	return nil
}

// AppendComment is a plain INSERT; the database linearizes concurrent
// appends so none are lost.
func (r *RequestRepository) AppendComment(c *request.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return r.db.Create(c).Error
}

// Delete removes the request with its comments and documents. Irreversible.
func (r *RequestRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&request.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("request_id = ?", id).Delete(&request.Document{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&request.ClearanceRequest{}).Error
	})
}

func (r *RequestRepository) withRequesterName(db *gorm.DB) *gorm.DB {
	return db.Model(&request.ClearanceRequest{}).
		Select("clearance_requests.*, users.username AS requester_name").
		Joins("LEFT JOIN users ON users.id = clearance_requests.requester_id")
}
