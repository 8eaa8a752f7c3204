package timeline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
	"github.com/jfelder/cuepoint/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoID = "blob:video-1"

// setupTestSync creates a synchronizer backed by an in-memory database
func setupTestSync(t *testing.T) (*Synchronizer, *playback.Controller, *marker.Service, func()) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	service := marker.NewService(db.NewRepositories(database))
	controller := playback.New(0, 0)
	controller.SetDuration(60)
	sync := NewSynchronizer(service, controller)
	sync.LoadVideo(testVideoID, nil)

	cleanup := func() {
		_ = database.Close()
	}

	return sync, controller, service, cleanup
}

// addTestMarker persists a marker through the synchronizer at the given time
func addTestMarker(t *testing.T, sync *Synchronizer, atTime float64) *models.Marker {
	t.Helper()

	m, err := sync.AddMarker(context.Background(), atTime, "", "")
	require.NoError(t, err)
	return m
}

func markerAt(timestamp float64) *models.Marker {
	return models.NewMarker(testVideoID, timestamp, "content", models.MarkerTypeText)
}

func TestFindTriggered(t *testing.T) {
	m2 := markerAt(2.0)
	m5 := markerAt(5.0)
	m9 := markerAt(9.0)
	markers := []*models.Marker{m2, m5, m9}

	tests := []struct {
		name       string
		t          float64
		selectedID uuid.UUID
		want       *models.Marker
	}{
		{"far from all markers", 3.5, uuid.Nil, nil},
		{"inside window below", 4.6, uuid.Nil, m5},
		{"inside window above", 5.4, uuid.Nil, m5},
		{"boundary exactly tolerance away does not fire", 5.5, uuid.Nil, nil},
		{"lower boundary does not fire", 4.5, uuid.Nil, nil},
		{"just inside boundary fires", 5.4999, uuid.Nil, m5},
		{"selected marker never re-fires", 5.0, m5.ID, nil},
		{"exact hit", 9.0, uuid.Nil, m9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindTriggered(markers, tt.t, tt.selectedID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindTriggered_TieBreaksByOrder(t *testing.T) {
	first := markerAt(10.0)
	second := markerAt(10.0)
	third := markerAt(10.3)
	markers := []*models.Marker{first, second, third}

	// All three sit inside the window; the first in order wins
	got := FindTriggered(markers, 10.1, uuid.Nil)
	assert.Same(t, first, got)

	// With the first selected, the next in order wins
	got = FindTriggered(markers, 10.1, first.ID)
	assert.Same(t, second, got)
}

func TestOnTimeAdvance_TriggerScenario(t *testing.T) {
	sync, controller, _, cleanup := setupTestSync(t)
	defer cleanup()

	addTestMarker(t, sync, 2.0)
	m5 := addTestMarker(t, sync, 5.0)
	addTestMarker(t, sync, 9.0)
	require.NoError(t, sync.SelectMarker(uuid.Nil))
	controller.Play()

	// Advancing to 5.3 selects the 5.0 marker and pauses
	fired := sync.OnTimeAdvance(5.3)
	assert.True(t, fired)
	require.NotNil(t, sync.Selected())
	assert.Equal(t, m5.ID, sync.Selected().ID)
	assert.False(t, controller.IsPlaying())
	assert.Equal(t, 5.3, controller.CurrentTime())

	// Still selected: advancing to 5.4 does not fire again
	fired = sync.OnTimeAdvance(5.4)
	assert.False(t, fired)
	assert.Equal(t, m5.ID, sync.Selected().ID)

	// Deselect, then re-enter the window: fires again
	require.NoError(t, sync.SelectMarker(uuid.Nil))
	fired = sync.OnTimeAdvance(5.4)
	assert.True(t, fired)
	assert.Equal(t, m5.ID, sync.Selected().ID)
}

func TestOnTimeAdvance_SelectionIsSticky(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m5 := addTestMarker(t, sync, 5.0)
	require.NoError(t, sync.SelectMarker(m5.ID))

	// Moving far away does not clear the selection
	sync.OnTimeAdvance(30.0)
	require.NotNil(t, sync.Selected())
	assert.Equal(t, m5.ID, sync.Selected().ID)

	// Seeking back to the selected marker does not re-fire
	fired := sync.OnTimeAdvance(5.0)
	assert.False(t, fired)
}

func TestOnTimeAdvance_RepeatedSameTickIdempotent(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	addTestMarker(t, sync, 5.0)
	require.NoError(t, sync.SelectMarker(uuid.Nil))

	assert.True(t, sync.OnTimeAdvance(5.2))
	assert.False(t, sync.OnTimeAdvance(5.2))
	assert.False(t, sync.OnTimeAdvance(5.2))
}

func TestAddMarker_InsertsSortedAndSelects(t *testing.T) {
	sync, controller, _, cleanup := setupTestSync(t)
	defer cleanup()

	addTestMarker(t, sync, 9.0)
	addTestMarker(t, sync, 2.0)
	m := addTestMarker(t, sync, 5.0)

	markers := sync.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, 2.0, markers[0].Timestamp)
	assert.Equal(t, 5.0, markers[1].Timestamp)
	assert.Equal(t, 9.0, markers[2].Timestamp)

	// The newest marker is selected and playback is paused
	require.NotNil(t, sync.Selected())
	assert.Equal(t, m.ID, sync.Selected().ID)
	assert.False(t, controller.IsPlaying())
}

func TestAddMarker_AppliesDefaults(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m, err := sync.AddMarker(context.Background(), 3.0, "", "")

	require.NoError(t, err)
	assert.Equal(t, "New interaction point", m.Content)
	assert.Equal(t, models.MarkerTypeText, m.Type)
}

func TestAddMarker_NoLocalMutationOnValidationFailure(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	addTestMarker(t, sync, 2.0)

	_, err := sync.AddMarker(context.Background(), -1.0, "", "")

	require.Error(t, err)
	assert.Len(t, sync.Markers(), 1)
}

func TestAddMarker_NoLocalMutationOnStoreFailure(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)

	addTestMarker(t, sync, 2.0)
	selected := sync.Selected()

	// Closing the database makes the next persist fail like a store outage
	cleanup()

	_, err := sync.AddMarker(context.Background(), 7.0, "", "")

	require.Error(t, err)
	assert.Len(t, sync.Markers(), 1)
	assert.Equal(t, selected, sync.Selected())
}

func TestAddMarker_NoVideoLoaded(t *testing.T) {
	sync := NewSynchronizer(nil, playback.New(0, 0))

	_, err := sync.AddMarker(context.Background(), 1.0, "", "")

	assert.ErrorIs(t, err, ErrNoVideo)
}

func TestUpdateMarker_TimestampChangeResorts(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m2 := addTestMarker(t, sync, 2.0)
	addTestMarker(t, sync, 5.0)

	ts := 8.0
	updated, err := sync.UpdateMarker(context.Background(), m2.ID, marker.UpdateInput{Timestamp: &ts})

	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Timestamp)

	markers := sync.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, 5.0, markers[0].Timestamp)
	assert.Equal(t, m2.ID, markers[1].ID)
}

func TestUpdateMarker_RefreshesSelection(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m := addTestMarker(t, sync, 2.0)
	require.NoError(t, sync.SelectMarker(m.ID))

	content := "edited"
	_, err := sync.UpdateMarker(context.Background(), m.ID, marker.UpdateInput{Content: &content})

	require.NoError(t, err)
	require.NotNil(t, sync.Selected())
	assert.Equal(t, "edited", sync.Selected().Content)
}

func TestUpdateMarker_NoLocalMutationOnFailure(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m := addTestMarker(t, sync, 2.0)

	ts := -5.0
	_, err := sync.UpdateMarker(context.Background(), m.ID, marker.UpdateInput{Timestamp: &ts})

	require.Error(t, err)
	assert.Equal(t, 2.0, sync.Markers()[0].Timestamp)
}

func TestUpdateMarker_NotInSet(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	content := "edited"
	_, err := sync.UpdateMarker(context.Background(), uuid.New(), marker.UpdateInput{Content: &content})

	assert.ErrorIs(t, err, ErrMarkerNotInSet)
}

func TestDeleteMarker_SeeksToFirstRemaining(t *testing.T) {
	sync, controller, _, cleanup := setupTestSync(t)
	defer cleanup()

	m2 := addTestMarker(t, sync, 2.0)
	addTestMarker(t, sync, 5.0)
	addTestMarker(t, sync, 9.0)
	controller.SeekTo(20)

	err := sync.DeleteMarker(context.Background(), m2.ID)

	require.NoError(t, err)
	require.Len(t, sync.Markers(), 2)
	assert.Equal(t, 5.0, sync.Markers()[0].Timestamp)
	assert.Equal(t, 5.0, controller.CurrentTime())
}

func TestDeleteMarker_LastMarkerResetsPlayback(t *testing.T) {
	sync, controller, _, cleanup := setupTestSync(t)
	defer cleanup()

	m := addTestMarker(t, sync, 5.0)
	require.NoError(t, sync.SelectMarker(m.ID))
	controller.SeekTo(5.0)

	err := sync.DeleteMarker(context.Background(), m.ID)

	require.NoError(t, err)
	assert.Empty(t, sync.Markers())
	assert.Nil(t, sync.Selected())
	assert.Equal(t, 0.0, controller.CurrentTime())
}

func TestDeleteMarker_ClearsSelectionOnlyForDeleted(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m2 := addTestMarker(t, sync, 2.0)
	m5 := addTestMarker(t, sync, 5.0)
	require.NoError(t, sync.SelectMarker(m5.ID))

	err := sync.DeleteMarker(context.Background(), m2.ID)

	require.NoError(t, err)
	require.NotNil(t, sync.Selected())
	assert.Equal(t, m5.ID, sync.Selected().ID)
}

func TestDeleteMarker_NoLocalMutationOnStoreFailure(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)

	m := addTestMarker(t, sync, 2.0)
	cleanup()

	err := sync.DeleteMarker(context.Background(), m.ID)

	require.Error(t, err)
	assert.Len(t, sync.Markers(), 1)
}

func TestDeleteMarker_NotInSet(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	err := sync.DeleteMarker(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrMarkerNotInSet)
}

func TestSelectMarker_BypassesTolerance(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	m := addTestMarker(t, sync, 42.0)
	require.NoError(t, sync.SelectMarker(uuid.Nil))

	// Selection succeeds regardless of the playback position
	sync.OnTimeAdvance(1.0)
	require.NoError(t, sync.SelectMarker(m.ID))
	assert.Equal(t, m.ID, sync.Selected().ID)
}

func TestSelectMarker_UnknownID(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	err := sync.SelectMarker(uuid.New())

	assert.ErrorIs(t, err, ErrMarkerNotInSet)
}

func TestLoadVideo_SortsStableAndClearsSelection(t *testing.T) {
	sync, _, _, cleanup := setupTestSync(t)
	defer cleanup()

	first := markerAt(5.0)
	second := markerAt(5.0)
	early := markerAt(1.0)

	m := addTestMarker(t, sync, 3.0)
	require.NoError(t, sync.SelectMarker(m.ID))

	sync.LoadVideo("blob:video-2", []*models.Marker{first, second, early})

	markers := sync.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, early.ID, markers[0].ID)
	// Equal timestamps keep their relative order
	assert.Equal(t, first.ID, markers[1].ID)
	assert.Equal(t, second.ID, markers[2].ID)
	assert.Nil(t, sync.Selected())
	assert.Equal(t, "blob:video-2", sync.VideoID())
}
