package dashboard

import (
	"time"

	"github.com/frahmantamala/clearance-management/internal/request"
)

// AverageNotAvailable is returned when no approved requests exist yet.
const AverageNotAvailable = "N/A"

// UserStats is the per-user dashboard projection.
type UserStats struct {
	PendingRequests     int64 `json:"pendingRequests"`
	CompletedClearances int64 `json:"completedClearances"`
}

// RecentRequest is one row of the admin dashboard's latest-activity table.
type RecentRequest struct {
	ID        int64          `json:"id"`
	Requester string         `json:"requester"`
	Type      string         `json:"type"`
	Status    request.Status `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AdminStats is the admin dashboard projection. Everything here is derived
// from the store at call time and never persisted.
type AdminStats struct {
	PendingRequests       int64            `json:"pendingRequests"`
	CompletedClearances   int64            `json:"completedClearances"`
	AverageProcessingTime string           `json:"averageProcessingTime"`
	RejectionRate         string           `json:"rejectionRate"`
	TotalUsers            int64            `json:"totalUsers"`
	TotalRequests         int64            `json:"totalRequests"`
	RequestsByType        map[string]int64 `json:"requestsByType"`
	RecentRequests        []RecentRequest  `json:"recentRequests"`
}

// Repository defines the read-only queries the aggregator runs. Every call
// hits the store; there is no caching layer to go stale.
type Repository interface {
	CountByStatusForUser(userID int64, status request.Status) (int64, error)
	CountByStatus(status request.Status) (int64, error)
	CountRequests() (int64, error)
	CountUsers() (int64, error)
	// ApprovedReviewDurations returns reviewedAt-createdAt for every
	// approved request that has a review timestamp.
	ApprovedReviewDurations() ([]time.Duration, error)
	CountByType() (map[string]int64, error)
	RecentRequests(limit int) ([]RecentRequest, error)
}
