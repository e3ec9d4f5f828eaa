// internal/services/admin_service.go
package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type AdminService struct {
	apps  repository.ApplicationRepository
	users repository.UserRepository
}

type AdminDashboardStats struct {
	TotalApplications    int64                              `json:"total_applications"`
	DeletedApplications  int64                              `json:"deleted_applications"`
	ApplicationsByStatus map[models.ApplicationStatus]int64 `json:"applications_by_status"`
	PendingForward       int64                              `json:"pending_forward"`
	InAttorneyQueue      int64                              `json:"in_attorney_queue"`
	TotalUsers           int64                              `json:"total_users"`
	PendingUsers         int64                              `json:"pending_users"`
}

func NewAdminService(store *repository.Store) *AdminService {
	return &AdminService{
		apps:  store.Applications,
		users: store.Users,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context, p Principal) (*AdminDashboardStats, error) {
	if err := p.requireRole("view dashboard statistics", models.RoleAdmin); err != nil {
		return nil, err
	}

	stats := &AdminDashboardStats{}
	var byStatus map[models.ApplicationStatus]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.apps.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		_, total, err := s.apps.List(gctx, repository.ApplicationFilter{IncludeDeleted: true, Limit: 1})
		stats.DeletedApplications = total
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.users.Count(gctx, nil)
		return err
	})
	g.Go(func() error {
		pending := false
		var err error
		stats.PendingUsers, err = s.users.Count(gctx, &pending)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fromRepository(err)
	}

	stats.ApplicationsByStatus = make(map[models.ApplicationStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		n := byStatus[st]
		stats.ApplicationsByStatus[st] = n
		stats.TotalApplications += n
		if st.InAttorneyQueue() {
			stats.InAttorneyQueue += n
		}
	}
	stats.PendingForward = byStatus[models.StatusSubmitted]
	// CountByStatus skips soft-deleted rows; the unfiltered total includes them.
	stats.DeletedApplications -= stats.TotalApplications
	if stats.DeletedApplications < 0 {
		stats.DeletedApplications = 0
	}
	return stats, nil
}
