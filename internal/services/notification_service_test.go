package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.Change
}

func (r *recordingPublisher) Publish(c events.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func TestNotifyDeduplicatesRecipients(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	notifier := NewNotificationService(f.store, nil, pub, nil, quietLogger())

	err := notifier.Notify(f.ctx, []uuid.UUID{f.admin.ID, f.admin.ID, uuid.Nil, f.admin2.ID}, AccountApprovedTemplate(), nil)
	require.NoError(t, err)

	assert.Len(t, f.inbox(t, f.admin), 1)
	assert.Len(t, f.inbox(t, f.admin2), 1)
	assert.Len(t, pub.changes, 2)
	assert.Equal(t, events.CollectionNotifications, pub.changes[0].Collection)
}

func TestNotifyReportsFailedRecipients(t *testing.T) {
	f := newFixtureWith(t, func(f *fixture, store *repository.Store) {
		store.Notifications = &failingNotifications{
			NotificationRepository: store.Notifications,
			failFor:                map[uuid.UUID]bool{f.admin2.ID: true},
		}
	})

	err := f.notifier.Notify(f.ctx, []uuid.UUID{f.admin.ID, f.admin2.ID, f.attorney.ID}, AdminNewSubmissionTemplate("t", "a"), nil)
	require.ErrorIs(t, err, ErrNotificationDispatch)

	var derr *DispatchError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 3, derr.Attempted)
	assert.Contains(t, derr.Failed, f.admin2.ID)
	assert.Len(t, derr.Failed, 1)

	assert.Len(t, f.inbox(t, f.admin), 1)
	assert.Len(t, f.inbox(t, f.attorney), 1)
}

func TestNotifyIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	tpl := AccountApprovedTemplate()

	require.NoError(t, f.notifier.Notify(f.ctx, []uuid.UUID{f.applicant.ID}, tpl, nil))
	require.NoError(t, f.notifier.Notify(f.ctx, []uuid.UUID{f.applicant.ID}, tpl, nil))

	assert.Len(t, f.inbox(t, f.applicant), 2)
}

func TestNotifyMirrorsToMail(t *testing.T) {
	f := newFixture(t)
	mailer := &recordingMailer{}
	f.notifier.WithMailer(mailer)

	require.NoError(t, f.notifier.Notify(f.ctx, []uuid.UUID{f.applicant.ID}, ApplicationForwardedTemplate(), nil))
	f.notifier.Drain()
	assert.Equal(t, []string{"inventor@iprcell.test|Application Forwarded"}, mailer.sent)
}

type blockingMailer struct {
	release chan struct{}
	sent    chan string
}

func (m *blockingMailer) Send(ctx context.Context, to, _, _ string) error {
	select {
	case <-m.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	m.sent <- to
	return nil
}

func TestNotifyDoesNotWaitForMail(t *testing.T) {
	f := newFixture(t)
	mailer := &blockingMailer{release: make(chan struct{}), sent: make(chan string, 1)}
	f.notifier.WithMailer(mailer)

	reqCtx, cancel := context.WithCancel(f.ctx)
	require.NoError(t, f.notifier.Notify(reqCtx, []uuid.UUID{f.applicant.ID}, ApplicationForwardedTemplate(), nil))
	cancel()
	assert.Len(t, f.inbox(t, f.applicant), 1, "inbox written while the mail server is still stuck")

	close(mailer.release)
	f.notifier.Drain()
	assert.Equal(t, "inventor@iprcell.test", <-mailer.sent, "mirror outlives the request context")
}

func TestInboxLifecycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.notifier.Notify(f.ctx, []uuid.UUID{f.applicant.ID}, AccountApprovedTemplate(), nil))
	require.NoError(t, f.notifier.Notify(f.ctx, []uuid.UUID{f.applicant.ID}, ApplicationForwardedTemplate(), nil))

	items, total, err := f.notifier.List(f.ctx, f.applicant, false, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Application Forwarded", items[0].Title, "newest first")

	unread, err := f.notifier.UnreadCount(f.ctx, f.applicant)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	assert.ErrorIs(t, f.notifier.MarkRead(f.ctx, f.other, items[0].ID), ErrForbidden)
	require.NoError(t, f.notifier.MarkRead(f.ctx, f.applicant, items[0].ID))
	require.NoError(t, f.notifier.MarkRead(f.ctx, f.applicant, items[0].ID), "marking twice is fine")

	unreadOnly, _, err := f.notifier.List(f.ctx, f.applicant, true, 0, 10)
	require.NoError(t, err)
	require.Len(t, unreadOnly, 1)
	assert.Equal(t, "Account Approved", unreadOnly[0].Title)

	n, err := f.notifier.MarkAllRead(f.ctx, f.applicant)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err = f.notifier.UnreadCount(f.ctx, f.applicant)
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.ErrorIs(t, f.notifier.MarkRead(f.ctx, f.applicant, uuid.New()), ErrNotFound)
}

func TestApplicantOfFallsBackToEmail(t *testing.T) {
	f := newFixture(t)

	uid, ok := f.notifier.ApplicantOf(f.ctx, &models.Application{ApplicantEmail: f.applicant.Email})
	require.True(t, ok)
	assert.Equal(t, f.applicant.ID, uid)

	_, ok = f.notifier.ApplicantOf(f.ctx, &models.Application{ApplicantEmail: "ghost@nowhere.test"})
	assert.False(t, ok)
}
