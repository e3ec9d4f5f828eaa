package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/repository/memory"
)

var april2025 = time.Date(2025, time.April, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ctx       context.Context
	store     *repository.Store
	allocator *Allocator
	notifier  *NotificationService
	apps      *ApplicationService
	users     *UserService

	admin     Principal
	admin2    Principal
	attorney  Principal
	applicant Principal
	other     Principal
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testWorkflowConfig() config.WorkflowConfig {
	return config.WorkflowConfig{
		AllocatorAttempts:  3,
		AllocatorBackoff:   time.Millisecond,
		AllocatorCounterID: "applications",
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith lets a test wrap the repositories before the services are built.
func newFixtureWith(t *testing.T, wrap func(*fixture, *repository.Store)) *fixture {
	t.Helper()

	clock := func() time.Time { return april2025 }
	store := memory.NewStore(clock)
	f := &fixture{ctx: context.Background()}

	f.admin = f.seedUser(t, store, "admin@iprcell.test", "Asha Admin", models.RoleAdmin)
	f.admin2 = f.seedUser(t, store, "admin2@iprcell.test", "Bo Admin", models.RoleAdmin)
	f.attorney = f.seedUser(t, store, "pa@iprcell.test", "Pat Attorney", models.RolePatentAttorney)
	f.applicant = f.seedUser(t, store, "inventor@iprcell.test", "Ines Inventor", models.RoleUser)
	f.other = f.seedUser(t, store, "someone@iprcell.test", "Sam Else", models.RoleUser)

	if wrap != nil {
		wrap(f, store)
	}

	log := quietLogger()
	f.store = store
	f.allocator = NewAllocator(store.Counters, testWorkflowConfig(), nil, log).WithClock(clock)
	f.notifier = NewNotificationService(store, nil, nil, nil, log)
	f.apps = NewApplicationService(store, f.allocator, f.notifier, nil, nil, testWorkflowConfig(), log).WithClock(clock)
	f.users = NewUserService(store, f.notifier, nil, log)
	return f
}

func (f *fixture) seedUser(t *testing.T, store *repository.Store, email, name string, role models.UserRole) Principal {
	t.Helper()
	u := &models.User{
		Email:       email,
		DisplayName: name,
		Role:        role,
		Department:  "R&D",
		EmployeeID:  "E-" + name[:3],
		IsApproved:  true,
	}
	require.NoError(t, u.SetPassword("Secret#123"))
	require.NoError(t, store.Users.Create(context.Background(), u))
	return PrincipalFromUser(u)
}

func (f *fixture) inbox(t *testing.T, p Principal) []models.Notification {
	t.Helper()
	items, _, err := f.store.Notifications.List(f.ctx, repository.NotificationFilter{UserID: p.ID})
	require.NoError(t, err)
	return items
}

func (f *fixture) submit(t *testing.T, title string) *models.Application {
	t.Helper()
	app, err := f.apps.CreateSubmitted(f.ctx, f.applicant, validInput(title))
	require.NoError(t, err)
	return app
}

func validInput(title string) ApplicationInput {
	utility := models.PatentTypeUtility
	return ApplicationInput{
		Title:       title,
		Description: "A method for doing the thing faster.",
		Inventors:   []string{"Ines Inventor", "Ravi Co-Inventor"},
		PatentType:  &utility,
	}
}

func titles(items []models.Notification) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Title)
	}
	return out
}

// conflictingCounters fails the first n increments with a serialization conflict.
type conflictingCounters struct {
	mu    sync.Mutex
	n     int
	calls int
	next  repository.CounterRepository
}

func (c *conflictingCounters) Increment(ctx context.Context, id, prefix string, base int64) (int64, error) {
	c.mu.Lock()
	c.calls++
	fail := c.calls <= c.n
	c.mu.Unlock()
	if fail {
		return 0, errors.Join(repository.ErrConflict, errors.New("pq: could not serialize access"))
	}
	return c.next.Increment(ctx, id, prefix, base)
}

// failingNotifications rejects writes addressed to the listed users.
type failingNotifications struct {
	repository.NotificationRepository
	failFor map[uuid.UUID]bool
}

func (f *failingNotifications) Create(ctx context.Context, n *models.Notification) error {
	if f.failFor[n.UserID] {
		return errors.New("connection reset by peer")
	}
	return f.NotificationRepository.Create(ctx, n)
}
