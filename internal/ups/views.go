package ups

import (
	"context"
	"fmt"
	"time"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/feature"
	"github.com/kazi-app/ups/internal/integration"
)

// CommentsView is the comment slice of the provider.
type CommentsView struct{ p *Provider }

// Comments returns the comment view.
func (p *Provider) Comments() CommentsView { return CommentsView{p} }

func (v CommentsView) Add(ctx context.Context, in integration.CommentInput) (domain.Comment, error) {
	return v.p.svc.AddComment(ctx, in)
}

func (v CommentsView) Update(ctx context.Context, id string, patch integration.CommentPatch) (domain.Comment, error) {
	return v.p.svc.UpdateComment(ctx, id, patch)
}

func (v CommentsView) Delete(ctx context.Context, id string) error {
	return v.p.svc.DeleteComment(ctx, id)
}

func (v CommentsView) Resolve(ctx context.Context, id string) (domain.Comment, error) {
	return v.p.svc.ResolveComment(ctx, id, "")
}

func (v CommentsView) Assign(ctx context.Context, id, assignee string) (domain.Comment, error) {
	return v.p.svc.AssignComment(ctx, id, assignee)
}

func (v CommentsView) Select(ctx context.Context, id string) error {
	return v.p.svc.SelectComment(ctx, id)
}

func (v CommentsView) Selected() string                     { return v.p.svc.SelectedComment() }
func (v CommentsView) List() []domain.Comment               { return v.p.svc.Comments() }
func (v CommentsView) Enabled() bool                        { return v.p.features.IsEnabled(feature.Comments) }
func (v CommentsView) Get(id string) (domain.Comment, bool) { return v.p.svc.Comment(id) }

// AIView is the assistant slice. It is usable when AI is enabled in the
// configuration and the ai feature is on.
type AIView struct{ p *Provider }

// AI returns the assistant view.
func (p *Provider) AI() AIView { return AIView{p} }

// Enabled reports whether suggestions can be requested.
func (v AIView) Enabled() bool {
	return v.p.cfg.AIEnabled && v.p.features.IsEnabled(feature.AI)
}

// Model returns the assistant model name.
func (v AIView) Model() string { return v.p.assistant.Model() }

// Suggest asks the assistant for a reply to a comment and publishes
// ai.suggestion. Failures are reported like any other error.
func (v AIView) Suggest(ctx context.Context, commentID, instruction string) (assistant.Suggestion, error) {
	if !v.Enabled() {
		return assistant.Suggestion{}, fmt.Errorf("%w: %s", ErrFeatureDisabled, feature.AI)
	}
	c, ok := v.p.svc.Comment(commentID)
	if !ok {
		err := fmt.Errorf("suggest for %s: %w", commentID, integration.ErrCommentNotFound)
		v.p.ReportError(ctx, err)
		return assistant.Suggestion{}, err
	}

	req := assistant.Request{CommentID: c.ID, Comment: c.Content, Instruction: instruction}
	if pr := v.p.svc.CurrentProject(); pr != nil {
		req.Context = pr.Name
	}
	s, err := v.p.assistant.Suggest(ctx, req)
	if err != nil {
		v.p.ReportError(ctx, err)
		return assistant.Suggestion{}, err
	}

	v.p.publish(ctx, events.AISuggestion{CommentID: c.ID, Prompt: instruction, Text: s.Text, Model: s.Model})
	return s, nil
}

// CollaborationView is the session and real-time slice.
type CollaborationView struct{ p *Provider }

// Collaboration returns the collaboration view.
func (p *Provider) Collaboration() CollaborationView { return CollaborationView{p} }

func (v CollaborationView) Connect(ctx context.Context) error    { return v.p.svc.Connect(ctx) }
func (v CollaborationView) Disconnect(ctx context.Context) error { return v.p.svc.Disconnect(ctx) }
func (v CollaborationView) Status() domain.ConnectionStatus      { return v.p.svc.ConnectionStatus() }
func (v CollaborationView) IsConnected() bool {
	return v.p.svc.ConnectionStatus() == domain.ConnectionConnected
}
func (v CollaborationView) CurrentUser() *domain.User       { return v.p.svc.CurrentUser() }
func (v CollaborationView) CurrentProject() *domain.Project { return v.p.svc.CurrentProject() }

func (v CollaborationView) SetCurrentUser(ctx context.Context, u *domain.User) error {
	return v.p.svc.SetCurrentUser(ctx, u)
}

func (v CollaborationView) SetCurrentProject(ctx context.Context, pr *domain.Project) error {
	return v.p.svc.SetCurrentProject(ctx, pr)
}

// Broadcast sends kind to every app of the suite.
func (v CollaborationView) Broadcast(ctx context.Context, kind string, data any) error {
	return v.p.BroadcastToSuite(ctx, kind, data)
}

// NotificationsView is the notification center slice.
type NotificationsView struct{ p *Provider }

// Notifications returns the notification view.
func (p *Provider) Notifications() NotificationsView { return NotificationsView{p} }

func (v NotificationsView) Add(ctx context.Context, in integration.NotificationInput) (domain.Notification, error) {
	return v.p.svc.AddNotification(ctx, in)
}

func (v NotificationsView) MarkRead(ctx context.Context, id string) error {
	return v.p.svc.MarkNotificationRead(ctx, id)
}

func (v NotificationsView) MarkAllRead(ctx context.Context) (int, error) {
	return v.p.svc.MarkAllNotificationsRead(ctx)
}

func (v NotificationsView) Clear(ctx context.Context) error    { return v.p.svc.ClearNotifications(ctx) }
func (v NotificationsView) List() []domain.Notification        { return v.p.svc.Notifications() }
func (v NotificationsView) UnreadCount() int                   { return v.p.svc.UnreadCount() }
func (v NotificationsView) Toast(ctx context.Context, t Toast) { v.p.toaster.Toast(ctx, t) }

// FiltersView is the filter and search slice.
type FiltersView struct{ p *Provider }

// Filters returns the filter view.
func (p *Provider) Filters() FiltersView { return FiltersView{p} }

func (v FiltersView) Update(ctx context.Context, f domain.Filters) error {
	return v.p.svc.UpdateFilters(ctx, f)
}

func (v FiltersView) Clear(ctx context.Context) error { return v.p.svc.ClearFilters(ctx) }

func (v FiltersView) Search(ctx context.Context, query string) ([]domain.Comment, error) {
	return v.p.svc.Search(ctx, query)
}

func (v FiltersView) Current() domain.Filters   { return v.p.svc.Filters() }
func (v FiltersView) Results() []domain.Comment { return v.p.svc.FilteredComments() }

// ExportView is the export slice.
type ExportView struct{ p *Provider }

// Export returns the export view.
func (p *Provider) Export() ExportView { return ExportView{p} }

func (v ExportView) Comments(ctx context.Context, format domain.ExportFormat) (domain.ExportRecord, []byte, error) {
	return v.p.svc.ExportComments(ctx, format)
}

func (v ExportView) Schedule(ctx context.Context, format domain.ExportFormat, at time.Time) (domain.ExportRecord, error) {
	return v.p.svc.ScheduleExport(ctx, format, at)
}

func (v ExportView) Cancel(ctx context.Context, id string) error {
	return v.p.svc.CancelScheduledExport(ctx, id)
}

func (v ExportView) History() []domain.ExportRecord { return v.p.svc.ExportHistory() }

func (v ExportView) Data(ctx context.Context, id string) (domain.ExportRecord, []byte, error) {
	return v.p.svc.ExportData(ctx, id)
}

// HealthView is the health slice.
type HealthView struct{ p *Provider }

// Health returns the health view.
func (p *Provider) Health() HealthView { return HealthView{p} }

func (v HealthView) IsHealthy() bool      { return v.p.IsHealthy() }
func (v HealthView) Status() HealthStatus { return v.p.HealthStatus() }
func (v HealthView) Check() HealthStatus  { return v.p.CheckHealth() }
func (v HealthView) State() State         { return v.p.State() }
func (v HealthView) Metrics() Metrics     { return v.p.Metrics() }
func (v HealthView) LastError() error     { return v.p.svc.LastError() }
