// internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/utils"
)

const (
	defaultDraftTitle       = "Untitled Application"
	defaultDraftDescription = "No description provided"
	adminReviewerName       = "Admin"
	attorneyReviewerName    = "Patent Attorney"
)

// ApplicationService is the workflow engine: it owns every status transition of an
// application, who may trigger it, and the notifications it fans out.
//
// Application updates are last-write-wins. The only transactional resource is the month counter
// behind the allocator.
type ApplicationService struct {
	apps      repository.ApplicationRepository
	users     repository.UserRepository
	reviews   repository.ReviewRepository
	allocator *Allocator
	notifier  *NotificationService
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       config.WorkflowConfig
	log       logrus.FieldLogger
	now       func() time.Time
}

type ApplicationInput struct {
	Title       string                  `json:"title" validate:"required,max=500"`
	Description string                  `json:"description" validate:"required"`
	Inventors   []string                `json:"inventors" validate:"required,min=1,dive,required"`
	PatentType  *models.PatentType      `json:"patent_type,omitempty"`
	Attachments []models.FileAttachment `json:"attachments,omitempty" validate:"max=10,dive"`
}

// normalize trims every text field and drops blank inventors.
func (in ApplicationInput) normalize() ApplicationInput {
	out := ApplicationInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PatentType:  in.PatentType,
		Attachments: in.Attachments,
	}
	for _, name := range in.Inventors {
		if name = strings.TrimSpace(name); name != "" {
			out.Inventors = append(out.Inventors, name)
		}
	}
	return out
}

type AdminReviewInput struct {
	Status   models.ApplicationStatus `json:"status" validate:"required"`
	Comments string                   `json:"comments"`
}

type AttorneyReviewInput struct {
	Status             models.ApplicationStatus `json:"status" validate:"required"`
	Comments           string                   `json:"comments"`
	PatentabilityScore string                   `json:"patentability_score,omitempty" validate:"max=100"`
	NoveltyAssessment  string                   `json:"novelty_assessment,omitempty"`
	Recommendations    string                   `json:"recommendations,omitempty"`
	PARemarks          *string                  `json:"pa_remarks,omitempty"`
}

type ApplicationQuery struct {
	Status *models.ApplicationStatus
	Search string
	Offset int
	Limit  int
}

var (
	adminReviewTargets    = []models.ApplicationStatus{models.StatusUnderReview, models.StatusRejected, models.StatusPatentFiled}
	attorneyReviewTargets = []models.ApplicationStatus{models.StatusUnderReview, models.StatusApproved, models.StatusRejected, models.StatusPatentFiled}
)

func NewApplicationService(
	store *repository.Store,
	allocator *Allocator,
	notifier *NotificationService,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg config.WorkflowConfig,
	log logrus.FieldLogger,
) *ApplicationService {
	if publisher == nil {
		publisher = events.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ApplicationService{
		apps:      store.Applications,
		users:     store.Users,
		reviews:   store.Reviews,
		allocator: allocator,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		log:       log.WithField("component", "workflow"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for workflow timestamps.
func (s *ApplicationService) WithClock(now func() time.Time) *ApplicationService {
	s.now = now
	return s
}

// CreateDraft stores an unvalidated draft. Blank title and description get placeholders.
func (s *ApplicationService) CreateDraft(ctx context.Context, p Principal, in ApplicationInput) (*models.Application, error) {
	if err := p.requireRole("create applications", models.RoleUser, models.RoleAdmin, models.RolePatentAttorney); err != nil {
		return nil, err
	}

	in = in.normalize()
	if in.Title == "" {
		in.Title = defaultDraftTitle
	}
	if in.Description == "" {
		in.Description = defaultDraftDescription
	}
	if in.PatentType != nil && !in.PatentType.Valid() {
		in.PatentType = nil
	}

	app := s.newApplication(ctx, p, in, models.StatusDraft)
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, app.ID, "create.draft", "", models.StatusDraft)
	return app, nil
}

// CreateSubmitted validates and stores a submitted application, then notifies every admin.
func (s *ApplicationService) CreateSubmitted(ctx context.Context, p Principal, in ApplicationInput) (*models.Application, error) {
	if err := p.requireRole("submit applications", models.RoleUser, models.RoleAdmin, models.RolePatentAttorney); err != nil {
		return nil, err
	}

	in = in.normalize()
	if err := s.validateSubmission(in); err != nil {
		return nil, err
	}

	app := s.newApplication(ctx, p, in, models.StatusSubmitted)
	now := s.now()
	app.SubmittedAt = &now
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, app.ID, "create.submitted", "", models.StatusSubmitted)
	s.notifyAdmins(ctx, app, AdminNewSubmissionTemplate(app.Title, app.ApplicantName))
	return app, nil
}

// SubmitDraft moves the caller's own draft to submitted. When in is given it replaces the draft
// content before validation.
func (s *ApplicationService) SubmitDraft(ctx context.Context, p Principal, id uuid.UUID, in *ApplicationInput) (*models.Application, error) {
	app, err := s.ownApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if app.IsDeleted() || app.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: only drafts can be submitted (status %s)", ErrInvalidTransition, app.Status)
	}

	content := ApplicationInput{
		Title:       app.Title,
		Description: app.Description,
		Inventors:   app.Inventors,
		PatentType:  app.PatentType,
		Attachments: app.Attachments,
	}
	if in != nil {
		content = *in
	}
	content = content.normalize()
	if err := s.validateSubmission(content); err != nil {
		return nil, err
	}

	status := models.StatusSubmitted
	now := s.now()
	patch := models.ApplicationPatch{
		Status:      &status,
		Title:       &content.Title,
		Description: &content.Description,
		Inventors:   content.Inventors,
		PatentType:  content.PatentType,
		Attachments: content.Attachments,
		SubmittedAt: &now,
	}
	updated, err := s.apps.Update(ctx, id, patch)
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, id, "applicant.submit", models.StatusDraft, models.StatusSubmitted)
	s.notifyAdmins(ctx, updated, AdminNewSubmissionTemplate(updated.Title, updated.ApplicantName))
	return updated, nil
}

// Forward hands a submitted application to the patent attorneys. The application number is
// allocated only if none is set yet and is written with a conditional update, so a repeated or
// racing forward reuses the first number instead of replacing it.
func (s *ApplicationService) Forward(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if err := p.requireRole("forward applications", models.RoleAdmin); err != nil {
		return nil, err
	}

	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: only submitted applications can be forwarded (status %s)", ErrInvalidTransition, app.Status)
	}

	number := app.Number()
	if number == "" {
		allocated, err := s.allocator.Allocate(ctx)
		if err != nil {
			s.log.WithError(err).WithField("application_id", id).Error("forward aborted: no application number")
			return nil, err
		}

		assigned, err := s.apps.AssignNumber(ctx, id, allocated)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
		}
		if !assigned {
			// A concurrent forward numbered it first; the allocated value is left unused.
			current, err := s.apps.Get(ctx, id)
			if err != nil {
				return nil, fromRepository(err)
			}
			s.log.WithFields(logrus.Fields{
				"application_id": id,
				"discarded":      allocated,
				"number":         current.Number(),
			}).Warn("application already numbered by a concurrent forward")
			allocated = current.Number()
		}
		number = allocated
	}

	status := models.StatusApproved
	now := s.now()
	forwardedBy := adminReviewerName
	updated, err := s.apps.Update(ctx, id, models.ApplicationPatch{
		Status:          &status,
		ForwardedToPAAt: &now,
		ForwardedBy:     &forwardedBy,
	})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, id, "admin.forward", app.Status, status)

	attorneys, err := s.notifier.RecipientsByRole(ctx, models.RolePatentAttorney)
	if err != nil {
		s.log.WithError(err).Warn("could not resolve patent attorneys for assignment notice")
	}
	s.dispatch(ctx, "admin.forward", attorneys, PAAssignmentTemplate(number, updated.Title), updated.ID)
	s.notifyApplicant(ctx, "admin.forward", updated, ApplicationForwardedTemplate())
	return updated, nil
}

// AdminReview records an admin decision. Only a rejection notifies the applicant.
func (s *ApplicationService) AdminReview(ctx context.Context, p Principal, id uuid.UUID, in AdminReviewInput) (*models.Application, error) {
	if err := p.requireRole("review applications as admin", models.RoleAdmin); err != nil {
		return nil, err
	}
	if !statusIn(in.Status, adminReviewTargets) {
		return nil, newValidationError(fieldError("status", "oneof", "Status must be one of under_review, rejected, patent_filed"))
	}

	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.review(ctx, p, app, "admin.review", adminReviewerName, in.Status, in.Comments, models.ApplicationPatch{})
	if err != nil {
		return nil, err
	}

	if in.Status == models.StatusRejected {
		s.notifyApplicant(ctx, "admin.review", updated, ApplicationRejectedTemplate(updated.Number(), in.Comments))
	}
	return updated, nil
}

// AttorneyReview records a patent attorney decision on an application in the attorney queue.
// Setting new remarks withdraws any earlier admin approval of remarks.
func (s *ApplicationService) AttorneyReview(ctx context.Context, p Principal, id uuid.UUID, in AttorneyReviewInput) (*models.Application, error) {
	if err := p.requireRole("review applications as attorney", models.RolePatentAttorney); err != nil {
		return nil, err
	}
	if !statusIn(in.Status, attorneyReviewTargets) {
		return nil, newValidationError(fieldError("status", "oneof", "Status must be one of under_review, approved, rejected, patent_filed"))
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, newValidationError(utils.GetValidationErrors(err)...)
	}

	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.InAttorneyQueue() {
		return nil, fmt.Errorf("%w: application is not in the attorney queue (status %s)", ErrInvalidTransition, app.Status)
	}

	var extra models.ApplicationPatch
	if v := strings.TrimSpace(in.PatentabilityScore); v != "" {
		extra.PatentabilityScore = &v
	}
	if v := strings.TrimSpace(in.NoveltyAssessment); v != "" {
		extra.NoveltyAssessment = &v
	}
	if v := strings.TrimSpace(in.Recommendations); v != "" {
		extra.Recommendations = &v
	}
	if in.PARemarks != nil {
		remarks := strings.TrimSpace(*in.PARemarks)
		if remarks != app.PARemarks {
			approved := false
			extra.PARemarks = &remarks
			extra.PARemarksApprovedByAdmin = &approved
		}
	}

	reviewer := strings.TrimSpace(p.DisplayName)
	if reviewer == "" {
		reviewer = attorneyReviewerName
	}

	updated, err := s.review(ctx, p, app, "attorney.review", reviewer, in.Status, in.Comments, extra)
	if err != nil {
		return nil, err
	}

	if tpl, ok := AttorneyDecisionTemplate(in.Status, updated.Number(), in.Comments); ok {
		s.notifyApplicant(ctx, "attorney.review", updated, tpl)
	}
	return updated, nil
}

// review appends the history record and then overwrites the scalar review fields.
func (s *ApplicationService) review(
	ctx context.Context,
	p Principal,
	app *models.Application,
	transition, reviewer string,
	status models.ApplicationStatus,
	comments string,
	patch models.ApplicationPatch,
) (*models.Application, error) {
	s.log.WithFields(logrus.Fields{
		"application_id":    app.ID,
		"transition":        transition,
		"previous_status":   app.Status,
		"previous_comments": app.ReviewComments,
		"previous_reviewer": app.ReviewedBy,
	}).Info("overwriting review fields")

	record := &models.ReviewRecord{
		ApplicationID:    app.ID,
		ReviewerID:       p.ID,
		ReviewerName:     reviewer,
		ReviewerRole:     p.Role,
		PreviousStatus:   app.Status,
		NewStatus:        status,
		PreviousComments: app.ReviewComments,
		Comments:         comments,
	}
	if err := s.reviews.Append(ctx, record); err != nil {
		return nil, fromRepository(err)
	}

	now := s.now()
	patch.Status = &status
	patch.ReviewComments = &comments
	patch.ReviewedAt = &now
	patch.ReviewedBy = &reviewer

	updated, err := s.apps.Update(ctx, app.ID, patch)
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, app.ID, transition, app.Status, status)
	return updated, nil
}

// ApprovePARemarks makes the attorney remarks visible to the applicant.
func (s *ApplicationService) ApprovePARemarks(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if err := p.requireRole("approve attorney remarks", models.RoleAdmin); err != nil {
		return nil, err
	}

	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(app.PARemarks) == "" {
		return nil, fmt.Errorf("%w: application has no attorney remarks", ErrInvalidTransition)
	}

	approved := true
	updated, err := s.apps.Update(ctx, id, models.ApplicationPatch{PARemarksApprovedByAdmin: &approved})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, id, "admin.approve_remarks", app.Status, updated.Status)
	s.notifyApplicant(ctx, "admin.approve_remarks", updated, PARemarksAvailableTemplate(updated.Number()))
	return updated, nil
}

// MarkPublished closes out a filed patent.
func (s *ApplicationService) MarkPublished(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if err := p.requireRole("mark applications published", models.RoleAdmin); err != nil {
		return nil, err
	}

	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusPatentFiled {
		return nil, fmt.Errorf("%w: only filed patents can be published (status %s)", ErrInvalidTransition, app.Status)
	}

	status := models.StatusPublished
	updated, err := s.apps.Update(ctx, id, models.ApplicationPatch{Status: &status})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, id, "admin.publish", app.Status, status)
	s.notifyApplicant(ctx, "admin.publish", updated, ApplicationPublishedTemplate(updated.Number()))
	return updated, nil
}

// Delete soft-deletes the caller's own application and tells every admin.
func (s *ApplicationService) Delete(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	app, err := s.ownApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if app.IsDeleted() {
		return nil, fmt.Errorf("%w: application already deleted", ErrInvalidTransition)
	}

	now := s.now()
	deletedBy := p.Email
	updated, err := s.apps.Update(ctx, id, models.ApplicationPatch{DeletedAt: &now, DeletedBy: &deletedBy})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.committed(p, id, "applicant.delete", app.Status, app.Status)
	s.notifyAdmins(ctx, updated, ApplicationDeletedTemplate(updated.Number(), updated.ApplicantName, updated.Title))
	return updated.ApplicantView(), nil
}

// ListOwn returns the caller's applications that are not deleted, newest first.
func (s *ApplicationService) ListOwn(ctx context.Context, p Principal, q ApplicationQuery) ([]models.Application, int64, error) {
	if !p.Authenticated() {
		return nil, 0, ErrForbidden
	}
	filter := repository.ApplicationFilter{
		ApplicantEmail: p.Email,
		Search:         q.Search,
		Offset:         q.Offset,
		Limit:          q.Limit,
	}
	if q.Status != nil {
		filter.Statuses = []models.ApplicationStatus{*q.Status}
	}

	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, 0, fromRepository(err)
	}
	for i := range apps {
		apps[i] = *apps[i].ApplicantView()
	}
	return apps, total, nil
}

// GetOwn returns one of the caller's applications, soft-deleted ones included, with remarks
// withheld until an admin approves them.
func (s *ApplicationService) GetOwn(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	app, err := s.ownApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return app.ApplicantView(), nil
}

// ListAll is the admin view over every application, deleted ones included.
func (s *ApplicationService) ListAll(ctx context.Context, p Principal, q ApplicationQuery) ([]models.Application, int64, error) {
	if err := p.requireRole("list all applications", models.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.ApplicationFilter{
		IncludeDeleted: true,
		Search:         q.Search,
		Offset:         q.Offset,
		Limit:          q.Limit,
	}
	if q.Status != nil {
		filter.Statuses = []models.ApplicationStatus{*q.Status}
	}

	apps, total, err := s.apps.List(ctx, filter)
	return apps, total, fromRepository(err)
}

func (s *ApplicationService) GetForAdmin(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if err := p.requireRole("view applications", models.RoleAdmin); err != nil {
		return nil, err
	}
	app, err := s.apps.Get(ctx, id)
	return app, fromRepository(err)
}

// ListAttorneyQueue returns forwarded applications only: approved, rejected or patent_filed.
func (s *ApplicationService) ListAttorneyQueue(ctx context.Context, p Principal, q ApplicationQuery) ([]models.Application, int64, error) {
	if err := p.requireRole("view the attorney queue", models.RolePatentAttorney); err != nil {
		return nil, 0, err
	}
	filter := repository.ApplicationFilter{
		Statuses: models.AttorneyQueueStatuses,
		Search:   q.Search,
		Offset:   q.Offset,
		Limit:    q.Limit,
	}
	if q.Status != nil {
		if !q.Status.InAttorneyQueue() {
			return []models.Application{}, 0, nil
		}
		filter.Statuses = []models.ApplicationStatus{*q.Status}
	}

	apps, total, err := s.apps.List(ctx, filter)
	return apps, total, fromRepository(err)
}

// GetForAttorney hides anything outside the attorney queue as not found.
func (s *ApplicationService) GetForAttorney(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if err := p.requireRole("view applications", models.RolePatentAttorney); err != nil {
		return nil, err
	}
	app, err := s.activeApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.InAttorneyQueue() {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return app, nil
}

// Get resolves the view of an application appropriate to the caller's role.
func (s *ApplicationService) Get(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	switch {
	case p.Is(models.RoleAdmin):
		return s.GetForAdmin(ctx, p, id)
	case p.Is(models.RolePatentAttorney):
		app, err := s.GetForAttorney(ctx, p, id)
		if errors.Is(err, ErrNotFound) {
			return s.GetOwn(ctx, p, id)
		}
		return app, err
	default:
		return s.GetOwn(ctx, p, id)
	}
}

// ListForPrincipal is the role-scoped list behind the live application stream.
func (s *ApplicationService) ListForPrincipal(ctx context.Context, p Principal, q ApplicationQuery) ([]models.Application, int64, error) {
	switch {
	case p.Is(models.RoleAdmin):
		return s.ListAll(ctx, p, q)
	case p.Is(models.RolePatentAttorney):
		return s.ListAttorneyQueue(ctx, p, q)
	default:
		return s.ListOwn(ctx, p, q)
	}
}

// Reviews returns the review history visible to the caller.
func (s *ApplicationService) Reviews(ctx context.Context, p Principal, id uuid.UUID) ([]models.ReviewRecord, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	records, err := s.reviews.ListByApplication(ctx, id)
	return records, fromRepository(err)
}

func (s *ApplicationService) validateSubmission(in ApplicationInput) error {
	var fields []utils.ValidationError
	if err := utils.ValidateStruct(in); err != nil {
		fields = append(fields, utils.GetValidationErrors(err)...)
	}
	if in.PatentType != nil && !in.PatentType.Valid() {
		fields = append(fields, fieldError("patent_type", "oneof", "Patent type must be one of utility, design, publish"))
	}
	if s.cfg.RequirePatentType && in.PatentType == nil {
		fields = append(fields, fieldError("patent_type", "required", "patent_type is required"))
	}
	if len(fields) > 0 {
		return newValidationError(fields...)
	}
	return nil
}

func (s *ApplicationService) newApplication(ctx context.Context, p Principal, in ApplicationInput, status models.ApplicationStatus) *models.Application {
	app := &models.Application{
		Title:          in.Title,
		Description:    in.Description,
		Inventors:      in.Inventors,
		PatentType:     in.PatentType,
		Attachments:    in.Attachments,
		Status:         status,
		ApplicantUID:   p.ID,
		ApplicantEmail: p.Email,
		ApplicantName:  p.DisplayName,
	}
	// Snapshot the profile; later profile edits do not rewrite existing applications.
	if user, err := s.users.Get(ctx, p.ID); err == nil {
		app.ApplicantName = user.DisplayName
		app.Department = user.Department
		app.EmployeeID = user.EmployeeID
	}
	return app
}

func (s *ApplicationService) ownApplication(ctx context.Context, p Principal, id uuid.UUID) (*models.Application, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err)
	}
	if app.ApplicantUID != p.ID && !strings.EqualFold(app.ApplicantEmail, p.Email) {
		return nil, fmt.Errorf("%w: application belongs to another applicant", ErrForbidden)
	}
	return app, nil
}

// activeApplication loads an application that may still move through the workflow.
func (s *ApplicationService) activeApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err)
	}
	if app.IsDeleted() {
		return nil, fmt.Errorf("%w: application was deleted by the applicant", ErrInvalidTransition)
	}
	return app, nil
}

func (s *ApplicationService) committed(p Principal, id uuid.UUID, transition string, from, to models.ApplicationStatus) {
	s.metrics.Transition(transition)
	s.log.WithFields(logrus.Fields{
		"application_id": id,
		"transition":     transition,
		"actor":          p.Email,
		"role":           p.Role,
		"from":           from,
		"to":             to,
	}).Info("application transition committed")
	s.publisher.Publish(events.Change{Collection: events.CollectionApplications, ID: id.String()})
}

func (s *ApplicationService) notifyAdmins(ctx context.Context, app *models.Application, tpl Template) {
	admins, err := s.notifier.RecipientsByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Warn("could not resolve admins for notification")
		return
	}
	s.dispatch(ctx, "admins", admins, tpl, app.ID)
}

func (s *ApplicationService) notifyApplicant(ctx context.Context, transition string, app *models.Application, tpl Template) {
	uid, ok := s.notifier.ApplicantOf(ctx, app)
	if !ok {
		s.log.WithFields(logrus.Fields{"application_id": app.ID, "transition": transition}).Warn("applicant has no account, notification skipped")
		return
	}
	s.dispatch(ctx, transition, []uuid.UUID{uid}, tpl, app.ID)
}

// dispatch fans out and logs partial failures. The transition has already committed and is not
// rolled back.
func (s *ApplicationService) dispatch(ctx context.Context, transition string, recipients []uuid.UUID, tpl Template, applicationID uuid.UUID) {
	if err := s.notifier.Notify(ctx, recipients, tpl, &applicationID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"application_id": applicationID,
			"transition":     transition,
			"title":          tpl.Title,
		}).Error("notification dispatch incomplete")
	}
}

func statusIn(s models.ApplicationStatus, set []models.ApplicationStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
