package persistence

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/db"
)

func newJournal(t *testing.T) domain.DeliveryJournal {
	t.Helper()
	d, err := db.Open(config.DatabaseConfig{
		Driver:             "sqlite",
		DSN:                "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxOpenConns:       1,
		SlowQueryThreshold: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, AutoMigrate(d.DB))
	return NewDeliveryRepository(d.DB)
}

func TestDeliveryRepository_AppendAndListRecent(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.Append(ctx, &domain.DeliveryRecord{
		SubmissionID: "s1", Sink: domain.SinkNinox, Outcome: domain.OutcomeDelivered,
		ExternalID: "17", Duration: 120 * time.Millisecond, CreatedAt: base,
	}))
	require.NoError(t, j.Append(ctx, &domain.DeliveryRecord{
		SubmissionID: "s1", Sink: domain.SinkEmail, Outcome: domain.OutcomeFailed,
		Error: "dial tcp: timeout", Duration: time.Second, CreatedAt: base.Add(time.Second),
	}))

	recs, err := j.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, domain.SinkEmail, recs[0].Sink)
	assert.Equal(t, domain.OutcomeFailed, recs[0].Outcome)
	assert.Equal(t, "dial tcp: timeout", recs[0].Error)
	assert.Equal(t, time.Second, recs[0].Duration)

	assert.Equal(t, domain.SinkNinox, recs[1].Sink)
	assert.Equal(t, "17", recs[1].ExternalID)
	assert.Equal(t, 120*time.Millisecond, recs[1].Duration)

	recs, err = j.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDeliveryRepository_CountSince(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	now := time.Now().UTC()

	add := func(sink domain.Sink, outcome domain.Outcome, at time.Time) {
		require.NoError(t, j.Append(ctx, &domain.DeliveryRecord{
			SubmissionID: "x", Sink: sink, Outcome: outcome, CreatedAt: at,
		}))
	}
	add(domain.SinkNinox, domain.OutcomeDelivered, now.Add(-48*time.Hour))
	add(domain.SinkNinox, domain.OutcomeDelivered, now.Add(-time.Minute))
	add(domain.SinkNinox, domain.OutcomeDelivered, now.Add(-2*time.Minute))
	add(domain.SinkEmail, domain.OutcomeSkipped, now.Add(-time.Minute))

	counts, err := j.CountSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.OutcomeCount{
		{Sink: domain.SinkEmail, Outcome: domain.OutcomeSkipped, Count: 1},
		{Sink: domain.SinkNinox, Outcome: domain.OutcomeDelivered, Count: 2},
	}, counts)
}

func TestDeliveryPO_TruncatesError(t *testing.T) {
	var po DeliveryPO
	po.FromDomain(&domain.DeliveryRecord{Error: strings.Repeat("e", 600)})

	assert.Len(t, po.Error, 512)
	assert.False(t, po.CreatedAt.IsZero())
}

func TestDeliveryPO_TruncatesOnRuneBoundary(t *testing.T) {
	var po DeliveryPO
	po.FromDomain(&domain.DeliveryRecord{Error: strings.Repeat("e", 511) + strings.Repeat("ü", 10)})

	assert.Len(t, po.Error, 511)
	assert.True(t, utf8.ValidString(po.Error))
}
