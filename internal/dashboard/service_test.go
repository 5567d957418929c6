package dashboard_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clearance-management/internal/dashboard"
	"github.com/frahmantamala/clearance-management/internal/request"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DashboardService Suite")
}

// Mock stats repository for testing
type mockStatsRepository struct {
	countsByStatus     map[request.Status]int64
	userCountsByStatus map[request.Status]int64
	totalRequests      int64
	totalUsers         int64
	durations          []time.Duration
	countsByType       map[string]int64
	recent             []dashboard.RecentRequest
	err                error
}

func newMockStatsRepository() *mockStatsRepository {
	return &mockStatsRepository{
		countsByStatus:     make(map[request.Status]int64),
		userCountsByStatus: make(map[request.Status]int64),
		countsByType:       make(map[string]int64),
	}
}

func (m *mockStatsRepository) CountByStatusForUser(userID int64, status request.Status) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.userCountsByStatus[status], nil
}

func (m *mockStatsRepository) CountByStatus(status request.Status) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.countsByStatus[status], nil
}

func (m *mockStatsRepository) CountRequests() (int64, error) {
	return m.totalRequests, m.err
}

func (m *mockStatsRepository) CountUsers() (int64, error) {
	return m.totalUsers, m.err
}

func (m *mockStatsRepository) ApprovedReviewDurations() ([]time.Duration, error) {
	return m.durations, m.err
}

func (m *mockStatsRepository) CountByType() (map[string]int64, error) {
	return m.countsByType, m.err
}

func (m *mockStatsRepository) RecentRequests(limit int) ([]dashboard.RecentRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

var _ = Describe("DashboardService", func() {
	var (
		service  *dashboard.Service
		mockRepo *mockStatsRepository
	)

	BeforeEach(func() {
		mockRepo = newMockStatsRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = dashboard.NewService(mockRepo, logger)
	})

	Describe("UserStats", func() {
		It("should count the caller's pending and approved requests", func() {
			mockRepo.userCountsByStatus[request.StatusPending] = 2
			mockRepo.userCountsByStatus[request.StatusApproved] = 3

			stats, err := service.UserStats(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(stats.PendingRequests).To(Equal(int64(2)))
			Expect(stats.CompletedClearances).To(Equal(int64(3)))
		})

		It("should wrap repository failures", func() {
			mockRepo.err = errors.New("db down")

			_, err := service.UserStats(1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AdminStats", func() {
		Context("average processing time", func() {
			It("should report N/A when nothing has been approved yet", func() {
				stats, err := service.AdminStats()

				Expect(err).ToNot(HaveOccurred())
				Expect(stats.AverageProcessingTime).To(Equal(dashboard.AverageNotAvailable))
			})

			It("should round the mean review turnaround to whole days", func() {
				mockRepo.durations = []time.Duration{
					2 * 24 * time.Hour,
					4 * 24 * time.Hour,
				}

				stats, err := service.AdminStats()

				Expect(err).ToNot(HaveOccurred())
				Expect(stats.AverageProcessingTime).To(Equal("3 days"))
			})

			It("should round sub-day turnarounds down to zero", func() {
				mockRepo.durations = []time.Duration{3 * time.Hour}

				stats, err := service.AdminStats()

				Expect(err).ToNot(HaveOccurred())
				Expect(stats.AverageProcessingTime).To(Equal("0 days"))
			})
		})

		Context("rejection rate", func() {
			It("should report 0% when there are no requests at all", func() {
				stats, err := service.AdminStats()

				Expect(err).ToNot(HaveOccurred())
				Expect(stats.RejectionRate).To(Equal("0%"))
			})

			It("should compute the percentage over all requests", func() {
				mockRepo.countsByStatus[request.StatusRejected] = 1
				mockRepo.totalRequests = 3

				stats, err := service.AdminStats()

				Expect(err).ToNot(HaveOccurred())
				Expect(stats.RejectionRate).To(Equal("33.33%"))
			})
		})

		It("should assemble counters, histogram and recent activity", func() {
			mockRepo.countsByStatus[request.StatusPending] = 4
			mockRepo.countsByStatus[request.StatusApproved] = 5
			mockRepo.totalRequests = 10
			mockRepo.totalUsers = 7
			mockRepo.countsByType = map[string]int64{"Graduation": 6, "Library": 4}
			mockRepo.recent = []dashboard.RecentRequest{
				{ID: 10, Requester: "budi", Type: "Graduation", Status: request.StatusPending},
			}

			stats, err := service.AdminStats()

			Expect(err).ToNot(HaveOccurred())
			Expect(stats.PendingRequests).To(Equal(int64(4)))
			Expect(stats.CompletedClearances).To(Equal(int64(5)))
			Expect(stats.TotalRequests).To(Equal(int64(10)))
			Expect(stats.TotalUsers).To(Equal(int64(7)))
			Expect(stats.RequestsByType).To(HaveKeyWithValue("Graduation", int64(6)))
			Expect(stats.RecentRequests).To(HaveLen(1))
			Expect(stats.RecentRequests[0].Requester).To(Equal("budi"))
		})

		It("should cap recent activity at five entries", func() {
			for i := 0; i < 8; i++ {
				mockRepo.recent = append(mockRepo.recent, dashboard.RecentRequest{ID: int64(i + 1)})
			}

			stats, err := service.AdminStats()

			Expect(err).ToNot(HaveOccurred())
			Expect(stats.RecentRequests).To(HaveLen(5))
		})
	})
})
