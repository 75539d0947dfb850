package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireroute/pkg/db"
	"fireroute/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbConn, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	st := NewSQLiteStore(dbConn)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleAssignments() []model.Assignment {
	dist := 1394.82
	counter := 0
	poolVIP := 2

	return []model.Assignment{
		{
			GUID: "g1",
			Enrichment: model.Enrichment{
				Category:       model.CategoryFraud,
				Language:       model.LangRU,
				Sentiment:      model.SentimentNegative,
				Priority:       10,
				Summary:        "Клиент сообщает о краже средств.",
				Recommendation: "Заблокировать счёт.",
			},
			Segment:      "VIP",
			Office:       "Алматы",
			OfficeReason: model.ReasonByDistance,
			DistanceKm:   &dist,
			Manager:      "Иванов",
			Trace: model.Trace{
				HomeOffice:   "Алматы",
				OfficeReason: model.ReasonByDistance,
				InitialPool:  5,
				AfterVIP:     &poolVIP,
				Selected:     "Иванов",
				Top2:         []string{"Иванов", "Петров"},
				RRCounter:    &counter,
			},
		},
		{
			GUID: "g2",
			Enrichment: model.Enrichment{
				Category:  model.CategoryConsultation,
				Language:  model.LangRU,
				Sentiment: model.SentimentNeutral,
				Priority:  5,
			},
			Segment:      "MASS",
			Office:       "Астана",
			OfficeReason: model.ReasonDefault,
			Manager:      model.EscalationSentinel,
			Trace: model.Trace{
				HomeOffice:       "Астана",
				OfficeReason:     model.ReasonDefault,
				Escalation:       true,
				EscalationReason: "no_suitable_manager_in_home_office",
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	assignments := sampleAssignments()
	run := RunRecord{
		ID:          "run-1",
		StartedAt:   time.Now().UTC().Truncate(time.Second),
		TicketCount: len(assignments),
		Escalations: 1,
		ElapsedMs:   42,
	}

	require.NoError(t, st.SaveRun(ctx, run, assignments))

	got, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.TicketCount, got.TicketCount)
	assert.Equal(t, run.Escalations, got.Escalations)
	assert.Equal(t, run.ElapsedMs, got.ElapsedMs)
}

func TestGetRunMissing(t *testing.T) {
	st := newTestStore(t)

	got, err := st.GetRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssignmentsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	assignments := sampleAssignments()
	run := RunRecord{ID: "run-2", StartedAt: time.Now(), TicketCount: len(assignments)}
	require.NoError(t, st.SaveRun(ctx, run, assignments))

	got, err := st.GetAssignments(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "g1", first.GUID)
	assert.Equal(t, model.CategoryFraud, first.Enrichment.Category)
	assert.Equal(t, 10, first.Enrichment.Priority)
	require.NotNil(t, first.DistanceKm)
	assert.Equal(t, 1394.82, *first.DistanceKm)
	assert.Equal(t, "Иванов", first.Manager)

	// Trace survives the JSON round trip.
	assert.Equal(t, []string{"Иванов", "Петров"}, first.Trace.Top2)
	require.NotNil(t, first.Trace.AfterVIP)
	assert.Equal(t, 2, *first.Trace.AfterVIP)

	second := got[1]
	assert.Equal(t, model.EscalationSentinel, second.Manager)
	assert.True(t, second.Trace.Escalation)
	assert.Nil(t, second.DistanceKm)
}
