package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/sales"
)

func TestTracker_DismissIsSticky(t *testing.T) {
	store := newTestStore(t)
	profitRule(t, store)
	records := []sales.SaleRecord{{ID: "S1", CustomerName: "Joana", Profit: 150}}

	m := newTestMaterializer()
	tracker := NewTracker()

	alerts := m.Materialize(records, store.List(), tracker.DismissedIDs(), tracker.ReadIDs())
	require.Len(t, alerts, 1)

	at := fixedNow.Add(time.Hour)
	assert.True(t, tracker.Dismiss(alerts[0], at))
	assert.False(t, tracker.Dismiss(alerts[0], at))

	again := m.Materialize(records, store.List(), tracker.DismissedIDs(), tracker.ReadIDs())
	assert.Empty(t, again)

	history := tracker.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].IsDismissed)
	assert.Equal(t, at, history[0].Timestamp)
	assert.Equal(t, alerts[0].Message, history[0].Message)
	assert.True(t, tracker.IsDismissed(alerts[0].ID))
}

func TestTracker_DismissManySharesTimestamp(t *testing.T) {
	tracker := NewTracker()
	batch := []Alert{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	tracker.Dismiss(batch[0], fixedNow)

	at := fixedNow.Add(time.Minute)
	n := tracker.DismissMany(batch, at)
	assert.Equal(t, 2, n)

	history := tracker.History()
	require.Len(t, history, 3)
	assert.Equal(t, fixedNow, history[0].Timestamp)
	assert.Equal(t, at, history[1].Timestamp)
	assert.Equal(t, at, history[2].Timestamp)
}

func TestTracker_MarkAllRead(t *testing.T) {
	tracker := NewTracker()
	tracker.MarkAllRead([]string{"a", "b"})
	tracker.MarkAllRead([]string{"b"})

	assert.Equal(t, []string{"a", "b"}, tracker.ReadIDs().Sorted())
}

func TestTracker_ReturnsCopies(t *testing.T) {
	tracker := NewTracker()
	tracker.Dismiss(Alert{ID: "a"}, fixedNow)

	dismissed := tracker.DismissedIDs()
	dismissed.Remove("a")
	assert.True(t, tracker.IsDismissed("a"))

	history := tracker.History()
	history[0].ID = "changed"
	assert.Equal(t, "a", tracker.History()[0].ID)
}
