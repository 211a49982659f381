package ranking

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestActivityTracker_RecordsAndSorts(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	tracker := NewActivityTracker(5*time.Minute, fakeClock)

	tracker.Record("carol")
	tracker.Record("alice")
	tracker.Record("bob")

	assert.Equal(t, []string{"alice", "bob", "carol"}, tracker.Active())
}

func TestActivityTracker_ExpiresOutsideWindow(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	tracker := NewActivityTracker(5*time.Minute, fakeClock)

	tracker.Record("alice")
	fakeClock.Advance(3 * time.Minute)
	tracker.Record("bob")
	fakeClock.Advance(3 * time.Minute)

	// alice is 6 minutes old, bob only 3.
	assert.Equal(t, []string{"bob"}, tracker.Active())
}

func TestActivityTracker_RecordRefreshesWindow(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	tracker := NewActivityTracker(5*time.Minute, fakeClock)

	tracker.Record("alice")
	fakeClock.Advance(4 * time.Minute)
	tracker.Record("alice")
	fakeClock.Advance(4 * time.Minute)

	assert.Equal(t, []string{"alice"}, tracker.Active())
}

func TestActivityTracker_BoundaryIsInclusive(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	tracker := NewActivityTracker(5*time.Minute, fakeClock)

	tracker.Record("alice")
	fakeClock.Advance(5 * time.Minute)

	// Exactly at the window edge still counts as active.
	assert.Equal(t, []string{"alice"}, tracker.Active())

	fakeClock.Advance(time.Nanosecond)
	assert.Empty(t, tracker.Active())
}

func TestActivityTracker_EmptyByDefault(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	tracker := NewActivityTracker(5*time.Minute, fakeClock)

	assert.Empty(t, tracker.Active())
}
