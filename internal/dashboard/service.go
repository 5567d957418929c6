package dashboard

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/request"
)

const recentRequestsLimit = 5

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// UserStats counts the caller's own pending and approved requests.
func (s *Service) UserStats(userID int64) (UserStats, error) {
	pending, err := s.repo.CountByStatusForUser(userID, request.StatusPending)
	if err != nil {
		s.logger.Error("failed to count pending requests", "error", err, "user_id", userID)
		return UserStats{}, internal.NewInternalError("failed to compute user stats", err)
	}

	approved, err := s.repo.CountByStatusForUser(userID, request.StatusApproved)
	if err != nil {
		s.logger.Error("failed to count approved requests", "error", err, "user_id", userID)
		return UserStats{}, internal.NewInternalError("failed to compute user stats", err)
	}

	return UserStats{
		PendingRequests:     pending,
		CompletedClearances: approved,
	}, nil
}

// AdminStats recomputes the whole admin dashboard from the store.
func (s *Service) AdminStats() (AdminStats, error) {
	stats := AdminStats{}

	counts := []struct {
		status request.Status
		target *int64
	}{
		{request.StatusPending, &stats.PendingRequests},
		{request.StatusApproved, &stats.CompletedClearances},
	}
	for _, c := range counts {
		n, err := s.repo.CountByStatus(c.status)
		if err != nil {
			return AdminStats{}, s.statsError(err)
		}
		*c.target = n
	}

	rejected, err := s.repo.CountByStatus(request.StatusRejected)
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}

	stats.TotalRequests, err = s.repo.CountRequests()
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}

	stats.TotalUsers, err = s.repo.CountUsers()
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}

	durations, err := s.repo.ApprovedReviewDurations()
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}
	stats.AverageProcessingTime = formatAverageProcessingTime(durations)

	stats.RejectionRate = formatRejectionRate(rejected, stats.TotalRequests)

	stats.RequestsByType, err = s.repo.CountByType()
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}

	stats.RecentRequests, err = s.repo.RecentRequests(recentRequestsLimit)
	if err != nil {
		return AdminStats{}, s.statsError(err)
	}

	return stats, nil
}

func (s *Service) statsError(err error) error {
	s.logger.Error("failed to compute admin stats", "error", err)
	return internal.NewInternalError("failed to compute admin stats", err)
}

// formatAverageProcessingTime reports the mean review turnaround in whole
// days, or the sentinel when nothing has been approved yet.
func formatAverageProcessingTime(durations []time.Duration) string {
	if len(durations) == 0 {
		return AverageNotAvailable
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	mean := total / time.Duration(len(durations))
	days := int(math.Round(mean.Hours() / 24))

	return fmt.Sprintf("%d days", days)
}

func formatRejectionRate(rejected, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(rejected)/float64(total)*100)
}
