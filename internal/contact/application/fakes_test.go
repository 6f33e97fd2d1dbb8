package application

import (
	"context"
	"sync"
	"time"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

type fakeRecords struct {
	id    string
	err   error
	calls []*domain.Submission
}

func (f *fakeRecords) CreateRecord(_ context.Context, s *domain.Submission) (string, error) {
	f.calls = append(f.calls, s)
	return f.id, f.err
}

type fakeNotifier struct {
	err   error
	calls []*domain.Submission
}

func (f *fakeNotifier) NotifySubmission(_ context.Context, s *domain.Submission) error {
	f.calls = append(f.calls, s)
	return f.err
}

type fakeJournal struct {
	mu      sync.Mutex
	records []*domain.DeliveryRecord
	err     error
	counts  []domain.OutcomeCount
}

func (j *fakeJournal) Append(_ context.Context, r *domain.DeliveryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
	return j.err
}

func (j *fakeJournal) ListRecent(_ context.Context, limit int) ([]*domain.DeliveryRecord, error) {
	if limit > len(j.records) {
		limit = len(j.records)
	}
	return j.records[:limit], j.err
}

func (j *fakeJournal) CountSince(context.Context, time.Time) ([]domain.OutcomeCount, error) {
	return j.counts, j.err
}

type alertCall struct {
	sink         domain.Sink
	submissionID string
	cause        error
}

type fakeAlerter struct {
	calls []alertCall
}

func (a *fakeAlerter) DeliveryFailed(_ context.Context, sink domain.Sink, submissionID string, cause error) {
	a.calls = append(a.calls, alertCall{sink, submissionID, cause})
}

type staticState bool

func (s staticState) Configured() bool { return bool(s) }
