package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplecal/internal/clock"
	"simplecal/internal/model"
)

func mustDateTime(t *testing.T, s string) model.DateTime {
	t.Helper()
	dt, err := model.ParseDateTime(s)
	require.NoError(t, err)
	return dt
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	tod, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

// fixedAt pins the clock to the given moment, "2006-01-02 15:04".
func fixedAt(t *testing.T, s string) clock.Fixed {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	require.NoError(t, err)
	return clock.Fixed{Time: ts}
}

func TestAddEventAndListDay(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	require.NoError(t, mgr.AddEvent("Meeting",
		mustDateTime(t, "2025-12-31 10:00"),
		mustDateTime(t, "2025-12-31 11:00")))

	err := mgr.AddEvent("Overlap",
		mustDateTime(t, "2025-12-31 10:30"),
		mustDateTime(t, "2025-12-31 11:30"))
	require.Error(t, err)
	assert.True(t, IsOverlap(err))
	var oe *OverlappingEventError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, mustDate(t, "2025-12-31"), oe.Date)

	require.NoError(t, mgr.AddEvent("Evening",
		mustDateTime(t, "2025-12-31 18:00"),
		mustDateTime(t, "2025-12-31 19:00")))

	events := mgr.DaysEvents(mustDate(t, "2025-12-31"))
	require.Len(t, events, 2)
	assert.Equal(t, "Meeting", events[0].Title())
	assert.Equal(t, "Evening", events[1].Title())
	assert.True(t, events[0].Start() < events[1].Start())
}

func TestAddEventRejectsInvalidSpan(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	err := mgr.AddEvent("backwards",
		mustDateTime(t, "2025-12-31 11:00"),
		mustDateTime(t, "2025-12-31 10:00"))
	require.Error(t, err)
	assert.True(t, IsInvalidInterval(err))

	err = mgr.AddEvent("zero length",
		mustDateTime(t, "2025-12-31 10:00"),
		mustDateTime(t, "2025-12-31 10:00"))
	require.Error(t, err)
	assert.True(t, IsInvalidInterval(err))

	assert.Empty(t, mgr.DaysEvents(mustDate(t, "2025-12-31")))
}

func TestNoTwoStoredEventsOverlap(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))
	day := mustDate(t, "2025-07-01")

	spans := [][2]string{
		{"09:00", "10:00"},
		{"10:00", "11:00"}, // touching is legal
		{"08:00", "09:00"},
		{"09:30", "10:30"}, // rejected
		{"13:00", "14:00"},
	}
	for _, sp := range spans {
		_ = mgr.AddEvent("e",
			model.DateTime{Date: day, Time: mustTime(t, sp[0])},
			model.DateTime{Date: day, Time: mustTime(t, sp[1])})
	}

	events := mgr.DaysEvents(day)
	require.Len(t, events, 4)
	for i := range events {
		for j := i + 1; j < len(events); j++ {
			assert.False(t, events[i].Overlaps(events[j]),
				"%s overlaps %s", events[i], events[j])
		}
	}
}

func TestMultiDaySegmentation(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	require.NoError(t, mgr.AddEvent("NYE Party",
		mustDateTime(t, "2025-12-31 22:00"),
		mustDateTime(t, "2026-01-01 02:00")))

	first := mgr.DaysEvents(mustDate(t, "2025-12-31"))
	require.Len(t, first, 1)
	assert.Equal(t, mustTime(t, "22:00"), first[0].Start())
	assert.Equal(t, model.EndOfDay, first[0].End())

	second := mgr.DaysEvents(mustDate(t, "2026-01-01"))
	require.Len(t, second, 1)
	assert.Equal(t, model.Midnight, second[0].Start())
	assert.Equal(t, mustTime(t, "02:00"), second[0].End())
	assert.Equal(t, "NYE Party", second[0].Title())
}

func TestMultiDaySpanProducesOneSegmentPerDay(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	require.NoError(t, mgr.AddEvent("Conference",
		mustDateTime(t, "2025-03-10 09:00"),
		mustDateTime(t, "2025-03-13 17:00")))

	for day, want := range map[string][2]model.TimeOfDay{
		"2025-03-10": {mustTime(t, "09:00"), model.EndOfDay},
		"2025-03-11": {model.Midnight, model.EndOfDay},
		"2025-03-12": {model.Midnight, model.EndOfDay},
		"2025-03-13": {model.Midnight, mustTime(t, "17:00")},
	} {
		events := mgr.DaysEvents(mustDate(t, day))
		require.Len(t, events, 1, "day %s", day)
		assert.Equal(t, want[0], events[0].Start(), "day %s", day)
		assert.Equal(t, want[1], events[0].End(), "day %s", day)
	}
}

func TestMidnightBoundaryDropsEmptySegment(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	require.NoError(t, mgr.AddEvent("Late show",
		mustDateTime(t, "2025-12-31 22:00"),
		mustDateTime(t, "2026-01-01 00:00")))

	require.Len(t, mgr.DaysEvents(mustDate(t, "2025-12-31")), 1)
	assert.Empty(t, mgr.DaysEvents(mustDate(t, "2026-01-01")))
}

func TestMultiDayRejectionIsAtomic(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	require.NoError(t, mgr.AddEvent("Existing",
		mustDateTime(t, "2026-01-01 01:00"),
		mustDateTime(t, "2026-01-01 03:00")))

	err := mgr.AddEvent("Spanning",
		mustDateTime(t, "2025-12-31 22:00"),
		mustDateTime(t, "2026-01-01 02:00"))
	require.Error(t, err)
	var oe *OverlappingEventError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, mustDate(t, "2026-01-01"), oe.Date)

	// No partial commit: the first day stays untouched.
	assert.Empty(t, mgr.DaysEvents(mustDate(t, "2025-12-31")))
	require.Len(t, mgr.DaysEvents(mustDate(t, "2026-01-01")), 1)
}

func TestDaysEventsIsASnapshot(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))
	day := mustDate(t, "2025-07-01")

	require.NoError(t, mgr.AddEvent("Original",
		model.DateTime{Date: day, Time: mustTime(t, "09:00")},
		model.DateTime{Date: day, Time: mustTime(t, "10:00")}))

	events := mgr.DaysEvents(day)
	require.Len(t, events, 1)
	replacement, err := model.NewEvent("Impostor", mustTime(t, "20:00"), mustTime(t, "21:00"))
	require.NoError(t, err)
	events[0] = replacement

	again := mgr.DaysEvents(day)
	require.Len(t, again, 1)
	assert.Equal(t, "Original", again[0].Title())
}

func TestTodaysRemainingEvents(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 12:00"))
	today := mustDate(t, "2025-06-15")

	for _, sp := range [][2]string{
		{"08:00", "09:00"}, // already over
		{"11:30", "12:30"}, // in progress, still remaining
		{"15:00", "16:00"},
	} {
		require.NoError(t, mgr.AddEvent("e",
			model.DateTime{Date: today, Time: mustTime(t, sp[0])},
			model.DateTime{Date: today, Time: mustTime(t, sp[1])}))
	}

	remaining := mgr.TodaysRemainingEvents()
	require.Len(t, remaining, 2)
	assert.Equal(t, mustTime(t, "11:30"), remaining[0].Start())
	assert.Equal(t, mustTime(t, "15:00"), remaining[1].Start())
}

func TestNextAvailableSlotEmptyFutureDay(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 12:00"))

	slot, found := mgr.NextAvailableSlot(mustDate(t, "2025-07-01"), 30*time.Minute)
	require.True(t, found)
	assert.Equal(t, model.Midnight, slot.Start)
	assert.Equal(t, mustTime(t, "00:30"), slot.End)
}

func TestNextAvailableSlotEmptyToday(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 13:15"))

	slot, found := mgr.NextAvailableSlot(mustDate(t, "2025-06-15"), 45*time.Minute)
	require.True(t, found)
	assert.Equal(t, mustTime(t, "13:15"), slot.Start)
	assert.Equal(t, mustTime(t, "14:00"), slot.End)
}

func TestNextAvailableSlotBeforeFirstEvent(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))
	day := mustDate(t, "2025-07-01")

	require.NoError(t, mgr.AddEvent("Late",
		model.DateTime{Date: day, Time: mustTime(t, "09:00")},
		model.DateTime{Date: day, Time: mustTime(t, "10:00")}))

	slot, found := mgr.NextAvailableSlot(day, 60*time.Minute)
	require.True(t, found)
	assert.Equal(t, model.Midnight, slot.Start)
	assert.Equal(t, mustTime(t, "01:00"), slot.End)
}

func TestNextAvailableSlotKeepsBufferAfterEvent(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 09:30"))
	today := mustDate(t, "2025-06-15")

	require.NoError(t, mgr.AddEvent("Standup",
		model.DateTime{Date: today, Time: mustTime(t, "09:00")},
		model.DateTime{Date: today, Time: mustTime(t, "10:00")}))
	require.NoError(t, mgr.AddEvent("Lunch",
		model.DateTime{Date: today, Time: mustTime(t, "12:00")},
		model.DateTime{Date: today, Time: mustTime(t, "13:00")}))

	slot, found := mgr.NextAvailableSlot(today, 60*time.Minute)
	require.True(t, found)
	// One minute past the standup's end, never touching its boundary.
	assert.Equal(t, mustTime(t, "10:01"), slot.Start)
	assert.Equal(t, mustTime(t, "11:01"), slot.End)

	for _, ev := range mgr.DaysEvents(today) {
		assert.False(t, slot.Start < ev.End() && slot.End > ev.Start(),
			"slot %s overlaps %s", slot, ev)
	}
}

func TestNextAvailableSlotNoneAfterLastEvent(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))
	day := mustDate(t, "2025-07-01")

	require.NoError(t, mgr.AddEvent("Early",
		model.DateTime{Date: day, Time: model.Midnight},
		model.DateTime{Date: day, Time: mustTime(t, "01:00")}))

	// The only free room is after the last event; the scan does not look
	// past it.
	_, found := mgr.NextAvailableSlot(day, 30*time.Minute)
	assert.False(t, found)
}

func TestNextAvailableSlotRespectsEndOfDay(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 23:50"))

	_, found := mgr.NextAvailableSlot(mustDate(t, "2025-06-15"), 30*time.Minute)
	assert.False(t, found)
}

func TestNextAvailableSlotNonPositiveDuration(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	_, found := mgr.NextAvailableSlot(mustDate(t, "2025-07-01"), 0)
	assert.False(t, found)
	_, found = mgr.NextAvailableSlot(mustDate(t, "2025-07-01"), -time.Hour)
	assert.False(t, found)
}

func TestNextAvailableSlotIgnoresFinishedEventsToday(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 12:00"))
	today := mustDate(t, "2025-06-15")

	require.NoError(t, mgr.AddEvent("Morning",
		model.DateTime{Date: today, Time: mustTime(t, "08:00")},
		model.DateTime{Date: today, Time: mustTime(t, "09:00")}))

	slot, found := mgr.NextAvailableSlot(today, 30*time.Minute)
	require.True(t, found)
	assert.Equal(t, mustTime(t, "12:00"), slot.Start)
	assert.Equal(t, mustTime(t, "12:30"), slot.End)
}

func TestDatesSortedAscending(t *testing.T) {
	mgr := New(fixedAt(t, "2025-06-15 08:00"))

	for _, day := range []string{"2025-09-01", "2025-01-15", "2025-05-20"} {
		d := mustDate(t, day)
		require.NoError(t, mgr.AddEvent("e",
			model.DateTime{Date: d, Time: mustTime(t, "09:00")},
			model.DateTime{Date: d, Time: mustTime(t, "10:00")}))
	}

	dates := mgr.Dates()
	require.Len(t, dates, 3)
	assert.Equal(t, "2025-01-15", dates[0].String())
	assert.Equal(t, "2025-05-20", dates[1].String())
	assert.Equal(t, "2025-09-01", dates[2].String())
}
