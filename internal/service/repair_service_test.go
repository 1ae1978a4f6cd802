package service

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairbox/internal/database"
	"repairbox/internal/errs"
	"repairbox/internal/ledger"
	"repairbox/internal/model"
	"repairbox/internal/smsgw"
	"repairbox/internal/store"
)

const day = "2026-03-01"

var fixedNow = time.Date(2026, 3, 1, 11, 45, 0, 0, time.UTC)

func setupService(t *testing.T) *RepairService {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(db))

	log := slog.New(slog.DiscardHandler)
	svc := NewRepairService(store.NewGateway(db, log), smsgw.NewClient("", log), log)
	svc.now = func() time.Time { return fixedNow }
	require.NoError(t, svc.Load(false))
	return svc
}

func addDevice(t *testing.T, svc *RepairService, client string) {
	_, err := svc.CreateDevice(day, &model.Device{
		Client: client, Phone: "+111", Model: "iPhone 12", Problem: "screen",
	})
	require.NoError(t, err)
}

func TestCreateAndListDay(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")
	addDevice(t, svc, "Boris")

	views := svc.ListDay(day, "", "")
	require.Len(t, views, 2)
	assert.Equal(t, 0, views[0].Index)
	assert.Equal(t, "Anna", views[0].Device.Client)
	assert.Equal(t, "11:45", views[0].Device.Time)
	assert.Equal(t, fixedNow, views[0].Device.CreatedAt)

	t.Run("search narrows across fields", func(t *testing.T) {
		assert.Len(t, svc.ListDay(day, "bor", ""), 1)
		assert.Len(t, svc.ListDay(day, "iphone", ""), 2)
		assert.Empty(t, svc.ListDay(day, "nokia", ""))
	})

	t.Run("status filter", func(t *testing.T) {
		_, err := svc.l.BulkStatus(day, []int{0}, model.StatusRepaired)
		require.NoError(t, err)
		repaired := svc.ListDay(day, "", "repaired")
		require.Len(t, repaired, 1)
		assert.Equal(t, "Anna", repaired[0].Device.Client)
		assert.Empty(t, svc.ListDay(day, "", "urgent"))
	})

	t.Run("create persists", func(t *testing.T) {
		assert.Equal(t, store.IndicatorSaved, svc.Indicator().Status)
	})
}

func TestUpdateKeepsCreationInstant(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")

	later := fixedNow.Add(3 * time.Hour)
	svc.now = func() time.Time { return later }
	updated, err := svc.UpdateDevice(day, 0, &model.Device{
		Client: "Anna Petrova", Model: "iPhone 12", Problem: "screen and battery",
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, updated.CreatedAt, "edits keep the original creation instant")

	got, err := svc.GetDevice(day, 0)
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", got.Client)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "14:45", got.Time, "the display label moves to the edit time")
}

func TestDuplicateDevice(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")

	dup, err := svc.DuplicateDevice(day, 0)
	require.NoError(t, err)
	assert.Equal(t, "Anna"+ledger.CopyMarker, dup.Client)
	assert.Equal(t, model.StatusReceived, dup.Status)
	assert.Len(t, svc.ListDay(day, "", ""), 2)
}

func TestSelectionBulkFlow(t *testing.T) {
	svc := setupService(t)
	for _, c := range []string{"Anna", "Boris", "Clara"} {
		addDevice(t, svc, c)
	}

	state := svc.ToggleSelectMode(day)
	assert.True(t, state.Active)

	_, err := svc.ToggleSelect(0)
	require.NoError(t, err)
	state, err = svc.ToggleSelect(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, state.Indices)

	t.Run("bulk status applies and resets", func(t *testing.T) {
		n, err := svc.BulkStatus(model.StatusRepaired)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.False(t, svc.Selection().Active)

		views := svc.ListDay(day, "", "repaired")
		assert.Len(t, views, 2)
	})

	t.Run("empty selection warns", func(t *testing.T) {
		svc.ToggleSelectMode(day)
		_, err := svc.BulkStatus(model.StatusDelivered)
		assert.ErrorIs(t, err, errs.ErrEmptySelection)
		_, err = svc.BulkDelete()
		assert.ErrorIs(t, err, errs.ErrEmptySelection)
		svc.ToggleSelectMode(day)
	})

	t.Run("bulk delete removes high indices first", func(t *testing.T) {
		svc.ToggleSelectMode(day)
		_, err := svc.ToggleSelect(0)
		require.NoError(t, err)
		_, err = svc.ToggleSelect(2)
		require.NoError(t, err)
		n, err := svc.BulkDelete()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		left := svc.ListDay(day, "", "")
		require.Len(t, left, 1)
		assert.Equal(t, "Boris", left[0].Device.Client)
	})
}

func TestStructuralChangeClearsSelection(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")
	addDevice(t, svc, "Boris")

	svc.ToggleSelectMode(day)
	_, err := svc.ToggleSelect(1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDevice(day, 0))
	state := svc.Selection()
	assert.False(t, state.Active, "deleting from the selected day invalidates the selection")
	assert.Equal(t, 0, state.Count)
}

func TestBulkSMSSkipsPhonelessRecords(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")
	_, err := svc.CreateDevice(day, &model.Device{Client: "Boris", Model: "MacBook", Problem: "keys"})
	require.NoError(t, err)

	svc.ToggleSelectMode(day)
	_, err = svc.ToggleSelect(0)
	require.NoError(t, err)
	_, err = svc.ToggleSelect(1)
	require.NoError(t, err)

	msgs, err := svc.BulkSMS("Hello {client}, your {model} is ready")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Anna", msgs[0].Client)
	assert.Equal(t, "Hello Anna, your iPhone 12 is ready", msgs[0].Message)
	assert.Contains(t, msgs[0].URL, "sms:+111?body=")
	assert.False(t, svc.Selection().Active)
}

func TestImportAndWipe(t *testing.T) {
	svc := setupService(t)
	addDevice(t, svc, "Anna")

	data, _, err := svc.Export()
	require.NoError(t, err)

	t.Run("preview does not mutate", func(t *testing.T) {
		require.NoError(t, svc.DeleteDevice(day, 0))
		count, err := svc.ImportPreview(data)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 0, svc.CountRecords())
	})

	t.Run("apply replaces everything", func(t *testing.T) {
		count, err := svc.ImportApply(data)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, svc.CountRecords())
	})

	t.Run("invalid document is rejected before mutation", func(t *testing.T) {
		_, err := svc.ImportApply([]byte(`{"version":"2.0"}`))
		assert.ErrorIs(t, err, errs.ErrInvalidSnapshot)
		assert.Equal(t, 1, svc.CountRecords())
	})

	t.Run("wipe clears memory and store", func(t *testing.T) {
		require.NoError(t, svc.Wipe())
		assert.Equal(t, 0, svc.CountRecords())
	})
}

func TestReadsReturnDetachedCopies(t *testing.T) {
	svc := setupService(t)
	created, err := svc.CreateDevice(day, &model.Device{
		Client: "Anna", Phone: "+111", Model: "iPhone 12", Problem: "screen",
		Status: model.StatusDiagnostic,
	})
	require.NoError(t, err)

	views := svc.ListDay(day, "", "")
	require.Len(t, views, 1)
	got, err := svc.GetDevice(day, 0)
	require.NoError(t, err)

	// The ticker keeps rewriting TimeSpent on in-progress records. Records
	// already handed out must not observe that.
	require.Equal(t, 1, svc.TrackTime())
	assert.Empty(t, created.TimeSpent)
	assert.Empty(t, views[0].Device.TimeSpent)
	assert.Empty(t, got.TimeSpent)

	fresh, err := svc.GetDevice(day, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.0", fresh.TimeSpent)

	t.Run("mutating a returned record does not touch the ledger", func(t *testing.T) {
		got.Client = "Mallory"
		views[0].Device.Status = model.StatusDelivered

		check, err := svc.GetDevice(day, 0)
		require.NoError(t, err)
		assert.Equal(t, "Anna", check.Client)
		assert.Equal(t, model.StatusDiagnostic, check.Status)
	})
}

func TestSeedOnFirstRun(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(db))

	log := slog.New(slog.DiscardHandler)
	svc := NewRepairService(store.NewGateway(db, log), smsgw.NewClient("", log), log)
	require.NoError(t, svc.Load(true))
	assert.Equal(t, 4, svc.CountRecords())

	t.Run("seed only happens on an empty store", func(t *testing.T) {
		again := NewRepairService(store.NewGateway(db, log), smsgw.NewClient("", log), log)
		require.NoError(t, again.Load(true))
		assert.Equal(t, 4, again.CountRecords())
	})
}
