package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samijaber1/aegis-uptime/internal/incident"
	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
	"github.com/samijaber1/aegis-uptime/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot(takenAt time.Time) storage.Snapshot {
	resolvedAt := takenAt.Add(-time.Hour)
	return storage.Snapshot{
		Records: map[string][]sla.Record{
			"api-sla": {
				{
					ID:         "rec-1",
					SLAID:      "api-sla",
					Timestamp:  takenAt.Add(-2 * time.Hour),
					Status:     sla.StatusCompliant,
					Compliance: 100,
					Targets: []sla.TargetResult{
						{TargetID: "availability", Metric: "availability", Actual: 99.95, Target: 99.9, Compliant: true},
					},
				},
				{
					ID:         "rec-2",
					SLAID:      "api-sla",
					Timestamp:  takenAt.Add(-time.Hour),
					Status:     sla.StatusBreached,
					Compliance: 97.2,
				},
			},
		},
		Results: map[string][]probe.Result{
			"web-check": {
				{
					ID:           "res-1",
					CheckID:      "web-check",
					Timestamp:    takenAt.Add(-30 * time.Minute),
					Region:       "eu-west",
					Success:      true,
					ResponseTime: 120 * time.Millisecond,
					StatusCode:   200,
				},
			},
		},
		Incidents: []incident.Incident{
			{
				ID:        "inc-1",
				Title:     "api outage",
				Severity:  incident.SeverityHigh,
				Status:    incident.StatusResolved,
				SLAIDs:    []string{"api-sla"},
				StartTime: takenAt.Add(-3 * time.Hour),
				EndTime:   &resolvedAt,
				Duration:  2 * time.Hour,
				Updates: []incident.Update{
					{ID: "up-1", Timestamp: takenAt.Add(-3 * time.Hour), Kind: "status_change", Message: "incident created"},
				},
			},
		},
		TakenAt: takenAt,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	takenAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(sampleSnapshot(takenAt)))

	loaded, err := store.Load()
	require.NoError(t, err)

	require.Len(t, loaded.Records["api-sla"], 2)
	assert.Equal(t, "rec-1", loaded.Records["api-sla"][0].ID)
	assert.Equal(t, sla.StatusBreached, loaded.Records["api-sla"][1].Status)
	assert.Equal(t, 99.95, loaded.Records["api-sla"][0].Targets[0].Actual)

	require.Len(t, loaded.Results["web-check"], 1)
	assert.Equal(t, 120*time.Millisecond, loaded.Results["web-check"][0].ResponseTime)
	assert.Equal(t, "eu-west", loaded.Results["web-check"][0].Region)

	require.Len(t, loaded.Incidents, 1)
	inc := loaded.Incidents[0]
	assert.Equal(t, incident.StatusResolved, inc.Status)
	require.NotNil(t, inc.EndTime)
	assert.Equal(t, 2*time.Hour, inc.Duration)
	require.Len(t, inc.Updates, 1)

	assert.True(t, loaded.TakenAt.Equal(takenAt))
}

func TestLoadEmptyDatabase(t *testing.T) {
	store := openTestStore(t)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Results)
	assert.Empty(t, snap.Incidents)
	assert.True(t, snap.TakenAt.IsZero())
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	takenAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(sampleSnapshot(takenAt)))

	later := takenAt.Add(time.Hour)
	second := storage.Snapshot{
		Records: map[string][]sla.Record{
			"other-sla": {{ID: "rec-9", SLAID: "other-sla", Timestamp: later, Status: sla.StatusCompliant, Compliance: 100}},
		},
		TakenAt: later,
	}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded.Records, "api-sla")
	require.Len(t, loaded.Records["other-sla"], 1)
	assert.Empty(t, loaded.Results)
	assert.Empty(t, loaded.Incidents)
	assert.True(t, loaded.TakenAt.Equal(later))
}

func TestRecordsLoadInTimestampOrder(t *testing.T) {
	store := openTestStore(t)
	takenAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(sampleSnapshot(takenAt)))

	loaded, err := store.Load()
	require.NoError(t, err)

	ring := loaded.Records["api-sla"]
	require.Len(t, ring, 2)
	assert.True(t, ring[0].Timestamp.Before(ring[1].Timestamp))
}
