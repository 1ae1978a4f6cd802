package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairbox/internal/errs"
	"repairbox/internal/model"
)

func TestSelectionStateMachine(t *testing.T) {
	s := NewSelection()

	assert.ErrorIs(t, s.Toggle(0, 3), errs.ErrNotSelecting)
	assert.ErrorIs(t, s.SelectAll(3), errs.ErrNotSelecting)

	assert.True(t, s.ToggleMode(day))
	assert.Equal(t, day, s.Day())

	require.NoError(t, s.Toggle(1, 3))
	require.NoError(t, s.Toggle(2, 3))
	assert.Equal(t, []int{1, 2}, s.Indices())

	t.Run("toggle flips membership", func(t *testing.T) {
		require.NoError(t, s.Toggle(1, 3))
		assert.Equal(t, []int{2}, s.Indices())
	})

	t.Run("index is validated against day length", func(t *testing.T) {
		assert.ErrorIs(t, s.Toggle(3, 3), errs.ErrIndexOutOfRange)
		assert.ErrorIs(t, s.Toggle(-1, 3), errs.ErrIndexOutOfRange)
	})

	t.Run("leaving mode clears the set", func(t *testing.T) {
		assert.False(t, s.ToggleMode(day))
		assert.Equal(t, 0, s.Count())
	})

	t.Run("select all then reset", func(t *testing.T) {
		s.ToggleMode(day)
		require.NoError(t, s.SelectAll(4))
		assert.Equal(t, []int{0, 1, 2, 3}, s.Indices())
		s.Reset()
		assert.False(t, s.Active())
		assert.Equal(t, 0, s.Count())
	})
}

func TestBulkStatus(t *testing.T) {
	l := New()
	for _, c := range []string{"Anna", "Boris", "Clara"} {
		require.NoError(t, l.Upsert(day, nil, device(c)))
	}

	n, err := l.BulkStatus(day, []int{0, 2}, model.StatusRepaired)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for i, want := range []model.Status{model.StatusRepaired, model.StatusReceived, model.StatusRepaired} {
		d, err := l.Get(day, i)
		require.NoError(t, err)
		assert.Equal(t, want, d.Status, "index %d", i)
	}

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := l.BulkStatus(day, []int{0}, model.Status("exploded"))
		assert.ErrorIs(t, err, errs.ErrInvalidStatus)
	})

	t.Run("any bad index aborts before mutating", func(t *testing.T) {
		_, err := l.BulkStatus(day, []int{1, 9}, model.StatusDelivered)
		assert.ErrorIs(t, err, errs.ErrIndexOutOfRange)
		d, _ := l.Get(day, 1)
		assert.Equal(t, model.StatusReceived, d.Status)
	})
}

func TestTrackTime(t *testing.T) {
	l := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	inProgress := device("Anna")
	inProgress.Status = model.StatusDiagnostic
	inProgress.CreatedAt = now.Add(-90 * time.Minute)
	require.NoError(t, l.Upsert(day, nil, inProgress))

	done := device("Boris")
	done.Status = model.StatusRepaired
	done.CreatedAt = now.Add(-5 * time.Hour)
	require.NoError(t, l.Upsert(day, nil, done))

	updated := l.TrackTime(day, now)
	assert.Equal(t, 1, updated)

	d, _ := l.Get(day, 0)
	assert.Equal(t, "1.5", d.TimeSpent)
	d, _ = l.Get(day, 1)
	assert.Empty(t, d.TimeSpent, "resolved tickets are not tracked")

	t.Run("missing creation instant counts as zero hours", func(t *testing.T) {
		fresh := device("Clara")
		fresh.Status = model.StatusWaiting
		require.NoError(t, l.Upsert(day, nil, fresh))
		l.TrackTime(day, now)
		d, _ := l.Get(day, 2)
		assert.Equal(t, "0.0", d.TimeSpent)
	})
}
