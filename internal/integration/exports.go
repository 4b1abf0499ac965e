package integration

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/export"
)

// ExportComments encodes the current feed, archives it and publishes
// export.completed.
func (s *Service) ExportComments(ctx context.Context, format domain.ExportFormat) (domain.ExportRecord, []byte, error) {
	if err := s.checkOpen(); err != nil {
		return domain.ExportRecord{}, nil, err
	}

	rec := s.newExportRecord(format, domain.ExportScheduled)
	rec, data, err := s.runExport(ctx, rec)
	if err != nil {
		return rec, nil, err
	}
	return rec, data, nil
}

// ScheduleExport queues an export to run at at and publishes
// export.scheduled.
func (s *Service) ScheduleExport(ctx context.Context, format domain.ExportFormat, at time.Time) (domain.ExportRecord, error) {
	if err := s.checkOpen(); err != nil {
		return domain.ExportRecord{}, err
	}
	if !slices.Contains(export.Formats, format) {
		return domain.ExportRecord{}, s.fail(ctx, "schedule export", fmt.Errorf("%w: %q", ErrUnknownFormat, format))
	}

	rec := s.newExportRecord(format, domain.ExportScheduled)
	when := at
	rec.ScheduledFor = &when

	if err := s.store.Save(ctx, rec, nil); err != nil {
		return rec, s.fail(ctx, "schedule export", err)
	}
	s.mu.Lock()
	s.exports = append(s.exports, rec)
	s.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	if !s.scheduler.Schedule(rec.ID, at, func() { _, _, _ = s.runExport(detached, rec) }) {
		rec, _ = s.updateExport(rec.ID, func(r *domain.ExportRecord) {
			r.Status = domain.ExportCancelled
		})
		if err := s.store.Save(ctx, rec, nil); err != nil {
			s.log.Warn().Err(err).Str("export", rec.ID).Msg("cancelled export not archived")
		}
		return rec, ErrServiceClosed
	}

	s.publish(ctx, events.ExportScheduled{Record: rec})
	return rec, nil
}

// CancelScheduledExport cancels a pending export.
func (s *Service) CancelScheduledExport(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.scheduler.Cancel(id) {
		return s.fail(ctx, "cancel export "+id, ErrExportNotFound)
	}

	rec, ok := s.updateExport(id, func(r *domain.ExportRecord) {
		r.Status = domain.ExportCancelled
	})
	if ok {
		if err := s.store.Save(ctx, rec, nil); err != nil {
			s.log.Warn().Err(err).Str("export", id).Msg("cancelled export not archived")
		}
	}
	return nil
}

// ExportHistory returns every export of this session, oldest first.
func (s *Service) ExportHistory() []domain.ExportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.exports)
}

// ExportData loads an archived export.
func (s *Service) ExportData(ctx context.Context, id string) (domain.ExportRecord, []byte, error) {
	rec, data, err := s.store.Get(ctx, id)
	if err != nil {
		return rec, nil, fmt.Errorf("load export %s: %w", id, err)
	}
	return rec, data, nil
}

// PendingExports returns how many scheduled exports have not run yet.
func (s *Service) PendingExports() int {
	return s.scheduler.Pending()
}

func (s *Service) newExportRecord(format domain.ExportFormat, status domain.ExportStatus) domain.ExportRecord {
	rec := domain.ExportRecord{
		ID:        s.nextID(),
		Format:    format,
		Status:    status,
		CreatedAt: s.clock(),
	}
	s.mu.Lock()
	if s.project != nil {
		rec.ProjectID = s.project.ID
	}
	if s.user != nil {
		rec.RequestedBy = s.user.ID
	}
	s.mu.Unlock()
	return rec
}

// runExport encodes, archives and records one export. The record is
// appended to the history, or updated when it was scheduled.
func (s *Service) runExport(ctx context.Context, rec domain.ExportRecord) (domain.ExportRecord, []byte, error) {
	comments := s.Comments()
	data, err := export.Encode(rec.Format, comments)
	if err == nil {
		now := s.clock()
		rec.Status = domain.ExportCompleted
		rec.CommentCount = len(comments)
		rec.Size = len(data)
		rec.CompletedAt = &now
		err = s.store.Save(ctx, rec, data)
	}

	if err != nil {
		rec.Status = domain.ExportFailed
		rec.Error = err.Error()
		rec.CommentCount = 0
		rec.Size = 0
		rec.CompletedAt = nil
		s.storeExport(rec)
		s.publish(ctx, events.ExportFailed{Record: rec, Err: err})
		return rec, nil, s.fail(ctx, "export comments", err)
	}

	s.storeExport(rec)
	s.log.Info().Str("export", rec.ID).Str("format", string(rec.Format)).Int("size", rec.Size).Msg("export completed")
	s.publish(ctx, events.ExportCompleted{Record: rec})
	return rec, data, nil
}

func (s *Service) storeExport(rec domain.ExportRecord) {
	if _, ok := s.updateExport(rec.ID, func(r *domain.ExportRecord) { *r = rec }); ok {
		return
	}
	s.mu.Lock()
	s.exports = append(s.exports, rec)
	s.mu.Unlock()
}

func (s *Service) updateExport(id string, fn func(*domain.ExportRecord)) (domain.ExportRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.exports, func(r domain.ExportRecord) bool { return r.ID == id })
	if i < 0 {
		return domain.ExportRecord{}, false
	}
	fn(&s.exports[i])
	return s.exports[i], true
}
