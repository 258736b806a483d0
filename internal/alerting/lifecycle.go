package alerting

import "time"

// Tracker keeps read and dismissed state per alert identity plus the
// append-only dismissal history. Ids are never removed.
type Tracker struct {
	read      IDSet
	dismissed IDSet
	history   []Alert
}

func NewTracker() *Tracker {
	return &Tracker{
		read:      NewIDSet(),
		dismissed: NewIDSet(),
	}
}

// Dismiss records a dismissal. An already dismissed identity is ignored.
func (t *Tracker) Dismiss(alert Alert, at time.Time) bool {
	if t.dismissed.Has(alert.ID) {
		return false
	}
	t.dismissed.Add(alert.ID)
	t.history = append(t.history, snapshot(alert, at))
	return true
}

// DismissMany dismisses a batch under one shared timestamp and returns how
// many were newly dismissed.
func (t *Tracker) DismissMany(alerts []Alert, at time.Time) int {
	n := 0
	for _, a := range alerts {
		if t.Dismiss(a, at) {
			n++
		}
	}
	return n
}

func (t *Tracker) MarkAllRead(ids []string) {
	t.read.Add(ids...)
}

func (t *Tracker) IsDismissed(id string) bool {
	return t.dismissed.Has(id)
}

func (t *Tracker) ReadIDs() IDSet {
	return t.read.Clone()
}

func (t *Tracker) DismissedIDs() IDSet {
	return t.dismissed.Clone()
}

func (t *Tracker) History() []Alert {
	out := make([]Alert, len(t.history))
	copy(out, t.history)
	return out
}

func snapshot(a Alert, at time.Time) Alert {
	a.IsDismissed = true
	a.Timestamp = at.UTC()
	return a
}
