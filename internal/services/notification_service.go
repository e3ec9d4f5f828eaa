// internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

const (
	dispatchConcurrency = 8
	mirrorTimeout       = 30 * time.Second
)

// NotificationService is the notification dispatcher plus the recipient's inbox.
//
// Delivery is at-least-once: running a transition twice sends its notifications twice, and
// nothing deduplicates them. A fan-out writes one row per recipient independently, so a failure
// for one recipient never blocks the others.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mailer        Mailer
	publisher     events.Publisher
	metrics       *metrics.Metrics
	log           logrus.FieldLogger
	frontendURL   string
	now           func() time.Time
	mirrors       sync.WaitGroup
}

func NewNotificationService(store *repository.Store, cfg *config.Config, publisher events.Publisher, m *metrics.Metrics, log logrus.FieldLogger) *NotificationService {
	if publisher == nil {
		publisher = events.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &NotificationService{
		notifications: store.Notifications,
		users:         store.Users,
		publisher:     publisher,
		metrics:       m,
		log:           log.WithField("component", "notifications"),
		now:           func() time.Time { return time.Now().UTC() },
	}
	if cfg != nil {
		s.frontendURL = cfg.Frontend.BaseURL
		if cfg.Email.SMTPHost != "" {
			s.mailer = NewSMTPMailer(cfg.Email, log)
		}
	}
	return s
}

// WithMailer enables the e-mail mirror.
func (s *NotificationService) WithMailer(m Mailer) *NotificationService {
	s.mailer = m
	return s
}

// Notify writes one unread notification per distinct recipient. When some writes fail the
// others still land and the result is a *DispatchError naming the failed recipients.
func (s *NotificationService) Notify(ctx context.Context, recipients []uuid.UUID, tpl Template, applicationID *uuid.UUID) error {
	recipients = distinct(recipients)
	if len(recipients) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		failures = map[uuid.UUID]error{}
		g        errgroup.Group
	)
	g.SetLimit(dispatchConcurrency)

	for _, uid := range recipients {
		uid := uid
		g.Go(func() error {
			if err := s.deliver(ctx, uid, tpl, applicationID); err != nil {
				mu.Lock()
				failures[uid] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return &DispatchError{Attempted: len(recipients), Failed: failures}
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, userID uuid.UUID, tpl Template, applicationID *uuid.UUID) error {
	n := &models.Notification{
		UserID:  userID,
		Title:   tpl.Title,
		Message: tpl.Message,
		Type:    tpl.Type,
		Read:    false,
	}
	if applicationID != nil {
		id := *applicationID
		n.ApplicationID = &id
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.Notification("failed")
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "title": tpl.Title}).Error("failed to write notification")
		return err
	}
	s.metrics.Notification("delivered")
	s.publisher.Publish(events.Change{Collection: events.CollectionNotifications, ID: n.ID.String()})

	if s.mailer != nil {
		s.mirrors.Add(1)
		go func() {
			defer s.mirrors.Done()
			mctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()
			s.mirror(mctx, userID, tpl, applicationID)
		}()
	}
	return nil
}

// Drain waits for in-flight e-mail mirrors, e.g. during shutdown.
func (s *NotificationService) Drain() {
	s.mirrors.Wait()
}

// mirror e-mails a delivered notification off the request path. Best effort: errors are
// logged only.
func (s *NotificationService) mirror(ctx context.Context, userID uuid.UUID, tpl Template, applicationID *uuid.UUID) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("email mirror: recipient lookup failed")
		return
	}

	link := ""
	if s.frontendURL != "" {
		link = s.frontendURL + "/dashboard"
		if applicationID != nil {
			link = fmt.Sprintf("%s/dashboard/applications/%s", s.frontendURL, applicationID)
		}
	}

	body, err := renderNotificationEmail(user.DisplayName, tpl, link)
	if err != nil {
		s.log.WithError(err).Warn("email mirror: failed to render template")
		return
	}
	if err := s.mailer.Send(ctx, user.Email, tpl.Title, body); err != nil {
		s.log.WithError(err).WithField("to", user.Email).Warn("email mirror: send failed")
	}
}

// RecipientsByRole resolves every approved account holding role.
func (s *NotificationService) RecipientsByRole(ctx context.Context, role models.UserRole) ([]uuid.UUID, error) {
	ids, err := s.users.IDsByRole(ctx, role)
	if err != nil {
		return nil, fromRepository(err)
	}
	return ids, nil
}

// ApplicantOf resolves the inbox owner of an application, falling back to an e-mail lookup for
// records created without a uid.
func (s *NotificationService) ApplicantOf(ctx context.Context, app *models.Application) (uuid.UUID, bool) {
	if app.ApplicantUID != uuid.Nil {
		return app.ApplicantUID, true
	}
	user, err := s.users.GetByEmail(ctx, app.ApplicantEmail)
	if err != nil {
		return uuid.Nil, false
	}
	return user.ID, true
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, p Principal, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	if !p.Authenticated() {
		return nil, 0, ErrForbidden
	}
	items, total, err := s.notifications.List(ctx, repository.NotificationFilter{
		UserID:     p.ID,
		UnreadOnly: unreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, 0, fromRepository(err)
	}
	return items, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, p Principal) (int64, error) {
	if !p.Authenticated() {
		return 0, ErrForbidden
	}
	n, err := s.notifications.CountUnread(ctx, p.ID)
	return n, fromRepository(err)
}

// MarkRead flips read=true on one of the caller's notifications. Marking an already read
// notification succeeds without changing it.
func (s *NotificationService) MarkRead(ctx context.Context, p Principal, id uuid.UUID) error {
	if !p.Authenticated() {
		return ErrForbidden
	}
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return fromRepository(err)
	}
	if n.UserID != p.ID {
		return fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}
	if n.Read {
		return nil
	}

	if err := s.notifications.MarkRead(ctx, id, s.now()); err != nil {
		return fromRepository(err)
	}
	s.publisher.Publish(events.Change{Collection: events.CollectionNotifications, ID: id.String()})
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p Principal) (int64, error) {
	if !p.Authenticated() {
		return 0, ErrForbidden
	}
	n, err := s.notifications.MarkAllRead(ctx, p.ID, s.now())
	if err != nil {
		return 0, fromRepository(err)
	}
	if n > 0 {
		s.publisher.Publish(events.Change{Collection: events.CollectionNotifications, ID: p.ID.String()})
	}
	return n, nil
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
