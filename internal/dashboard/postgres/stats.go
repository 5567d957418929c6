package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/clearance-management/internal/dashboard"
	"github.com/frahmantamala/clearance-management/internal/request"
	"github.com/frahmantamala/clearance-management/internal/user"
)

// StatsRepository implements the dashboard.Repository interface using GORM.
// Every method is a fresh query; nothing is cached between calls.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) dashboard.Repository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CountByStatusForUser(userID int64, status request.Status) (int64, error) {
	var count int64
	err := r.db.Model(&request.ClearanceRequest{}).
		Where("requester_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountByStatus(status request.Status) (int64, error) {
	var count int64
	err := r.db.Model(&request.ClearanceRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountRequests() (int64, error) {
	var count int64
	err := r.db.Model(&request.ClearanceRequest{}).Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Count(&count).Error
	return count, err
}

// ApprovedReviewDurations computes review turnaround per approved request in
// Go rather than SQL so the arithmetic is identical on postgres and the
// sqlite test database.
func (r *StatsRepository) ApprovedReviewDurations() ([]time.Duration, error) {
	var rows []struct {
		CreatedAt  time.Time
		ReviewedAt *time.Time
	}
	err := r.db.Model(&request.ClearanceRequest{}).
		Select("created_at, reviewed_at").
		Where("status = ?", request.StatusApproved).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	durations := make([]time.Duration, 0, len(rows))
	for _, row := range rows {
		if row.ReviewedAt == nil {
			continue
		}
		durations = append(durations, row.ReviewedAt.Sub(row.CreatedAt))
	}
	return durations, nil
}

func (r *StatsRepository) CountByType() (map[string]int64, error) {
	var rows []struct {
		ClearanceType string
		Count         int64
	}
	err := r.db.Model(&request.ClearanceRequest{}).
		Select("clearance_type, COUNT(*) AS count").
		Group("clearance_type").
		Order("count DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	histogram := make(map[string]int64, len(rows))
	for _, row := range rows {
		histogram[row.ClearanceType] = row.Count
	}
	return histogram, nil
}

// RecentRequests returns the newest submissions with the requester's full
// name; requesters whose accounts were deleted show as "Unknown".
func (r *StatsRepository) RecentRequests(limit int) ([]dashboard.RecentRequest, error) {
	var rows []struct {
		ID            int64
		FullName      *string
		ClearanceType string
		Status        request.Status
		CreatedAt     time.Time
	}
	err := r.db.Model(&request.ClearanceRequest{}).
		Select("clearance_requests.id, CASE WHEN users.id IS NULL THEN NULL ELSE clearance_requests.full_name END AS full_name, clearance_requests.clearance_type, clearance_requests.status, clearance_requests.created_at").
		Joins("LEFT JOIN users ON users.id = clearance_requests.requester_id").
		Order("clearance_requests.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	recent := make([]dashboard.RecentRequest, len(rows))
	for i, row := range rows {
		requester := "Unknown"
		if row.FullName != nil && *row.FullName != "" {
			requester = *row.FullName
		}
		recent[i] = dashboard.RecentRequest{
			ID:        row.ID,
			Requester: requester,
			Type:      row.ClearanceType,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		}
	}
	return recent, nil
}
