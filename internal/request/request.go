package request

import (
	"time"

	"github.com/frahmantamala/clearance-management/internal/user"
)

// Status is the request lifecycle enumeration. Pending is initial; Approved
// and Rejected are terminal and locked (a reviewed request cannot be
// re-reviewed).
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// MaxDocuments is the upper bound on files attached at creation time;
// deployments may configure a lower cap but never a higher one.
const MaxDocuments = 5

// ClearanceRequest is the central entity. Requester and the submission
// fields are immutable after creation; only the review triple and comments
// change afterwards.
type ClearanceRequest struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	RequesterID   int64      `json:"requester_id" gorm:"column:requester_id;not null"`
	FullName      string     `json:"full_name" gorm:"column:full_name;not null"`
	Email         string     `json:"email" gorm:"not null"`
	ClearanceType string     `json:"clearance_type" gorm:"column:clearance_type;not null"`
	Reason        string     `json:"reason" gorm:"not null"`
	Description   string     `json:"description" gorm:"not null"`
	Status        Status     `json:"status" gorm:"type:varchar(16);default:Pending"`
	ReviewComment *string    `json:"review_comment,omitempty" gorm:"column:review_comment"`
	ReviewerID    *int64     `json:"reviewer_id,omitempty" gorm:"column:reviewer_id"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`

	Documents []Document `json:"documents" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Comments  []Comment  `json:"comments" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	// requester display name, joined in by the repository
	RequesterName string `json:"requester_name,omitempty" gorm:"->;-:migration"`
}

func (ClearanceRequest) TableName() string {
	return "clearance_requests"
}

// CanBeReviewed reports whether a terminal transition is still allowed.
func (r *ClearanceRequest) CanBeReviewed() bool {
	return r.Status == StatusPending
}

func (r *ClearanceRequest) IsOwnedBy(u *user.User) bool {
	return u != nil && r.RequesterID == u.ID
}

// Document is an attachment stored at creation time and never modified.
type Document struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	RequestID   int64  `json:"-" gorm:"column:request_id;not null"`
	Filename    string `json:"filename" gorm:"not null"`
	StoragePath string `json:"path" gorm:"column:storage_path;not null"`
	Position    int    `json:"-" gorm:"not null"`
}

func (Document) TableName() string {
	return "request_documents"
}

// Comment is append-only; insertion order is display order.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	RequestID int64     `json:"-" gorm:"column:request_id;not null"`
	AuthorID  int64     `json:"author_id" gorm:"column:author_id;not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Comment) TableName() string {
	return "request_comments"
}
