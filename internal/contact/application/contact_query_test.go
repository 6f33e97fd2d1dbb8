package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

func TestReadiness_WithoutJournal(t *testing.T) {
	q := NewContactQuery(nil, staticState(true), staticState(false))

	dto, err := q.Readiness(context.Background())
	require.NoError(t, err)
	assert.True(t, dto.Ninox.Configured)
	assert.False(t, dto.Email.Configured)
	assert.False(t, dto.Journal)
}

func TestReadiness_AggregatesCounts(t *testing.T) {
	j := &fakeJournal{counts: []domain.OutcomeCount{
		{Sink: domain.SinkNinox, Outcome: domain.OutcomeDelivered, Count: 3},
		{Sink: domain.SinkNinox, Outcome: domain.OutcomeFailed, Count: 1},
		{Sink: domain.SinkEmail, Outcome: domain.OutcomeSkipped, Count: 4},
	}}
	q := NewContactQuery(j, staticState(true), staticState(true))

	dto, err := q.Readiness(context.Background())
	require.NoError(t, err)
	assert.True(t, dto.Journal)
	assert.Equal(t, map[string]int64{"delivered": 3, "failed": 1}, dto.Ninox.Last24h)
	assert.Equal(t, map[string]int64{"skipped": 4}, dto.Email.Last24h)
}

func TestRecentDeliveries(t *testing.T) {
	q := NewContactQuery(nil, nil, nil)
	_, err := q.RecentDeliveries(context.Background(), 5)
	assert.ErrorIs(t, err, ErrJournalDisabled)

	j := &fakeJournal{records: []*domain.DeliveryRecord{
		{SubmissionID: "a", Sink: domain.SinkEmail, Outcome: domain.OutcomeDelivered},
		{SubmissionID: "b", Sink: domain.SinkNinox, Outcome: domain.OutcomeFailed, Error: "timeout"},
	}}
	q = NewContactQuery(j, nil, nil)
	out, err := q.RecentDeliveries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].SubmissionID)
	assert.Equal(t, "email", out[0].Sink)
}
