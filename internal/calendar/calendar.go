package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/btree"

	"simplecal/internal/clock"
	appLog "simplecal/internal/log"
	"simplecal/internal/model"
)

// slotBuffer is the number of minutes kept clear between an existing
// event's end and a suggested slot's start.
const slotBuffer = 1

// btreeDegree for the per-day event trees. Days hold at most a few dozen
// events, so a low degree keeps nodes small.
const btreeDegree = 2

// OverlappingEventError reports a request that collides with an existing
// event on some day. For multi-day requests the date names the first day
// that failed validation.
type OverlappingEventError struct {
	Date model.Date
}

func (e *OverlappingEventError) Error() string {
	return fmt.Sprintf("event overlaps an existing event on %s", e.Date)
}

// IsOverlap reports whether err is an OverlappingEventError.
func IsOverlap(err error) bool {
	var oe *OverlappingEventError
	return errors.As(err, &oe)
}

// IsInvalidInterval reports whether err is a model.InvalidIntervalError.
func IsInvalidInterval(err error) bool {
	var ie *model.InvalidIntervalError
	return errors.As(err, &ie)
}

// Slot is a free time window within a single day.
type Slot struct {
	Start model.TimeOfDay
	End   model.TimeOfDay
}

func (s Slot) String() string {
	return s.Start.String() + " to " + s.End.String()
}

// Manager owns the calendar: a mapping from date to that day's ordered,
// overlap-free event collection. Day entries are created lazily on first
// successful insertion and never removed. All methods are synchronous and
// the state is never shared; query results are independent snapshots.
type Manager struct {
	days map[model.Date]*btree.BTreeG[model.Event]
	clk  clock.Clock
}

// New creates an empty Manager using clk as its current-moment source.
func New(clk clock.Clock) *Manager {
	return &Manager{
		days: make(map[model.Date]*btree.BTreeG[model.Event]),
		clk:  clk,
	}
}

// segment is one day's slice of a multi-day request. Transient: consumed by
// validation and commit, never stored.
type segment struct {
	date  model.Date
	start model.TimeOfDay
	end   model.TimeOfDay
}

// AddEvent schedules a titled event spanning start to end, splitting it into
// one per-day segment per touched calendar day. Validation is all-or-nothing:
// if any segment collides with an existing event, the whole request is
// rejected and no state changes.
func (m *Manager) AddEvent(title string, start, end model.DateTime) error {
	if !end.After(start) {
		return &model.InvalidIntervalError{Start: start.String(), End: end.String()}
	}

	segs := splitSegments(start, end)

	// Validate every segment before committing any of them, so a multi-day
	// event is never partially scheduled.
	pending := make([]model.Event, 0, len(segs))
	for _, sg := range segs {
		probe, err := model.NewEvent(title, sg.start, sg.end)
		if err != nil {
			return err
		}
		if m.conflicts(sg.date, probe) {
			return &OverlappingEventError{Date: sg.date}
		}
		pending = append(pending, probe)
	}

	for i, sg := range segs {
		m.day(sg.date).ReplaceOrInsert(pending[i])
	}

	appLog.Debug("event added", "title", title, "start", start, "end", end, "segments", len(segs))
	return nil
}

// splitSegments walks every calendar day from start's date to end's date
// inclusive. The first day begins at the request start, later days at
// midnight; the last day ends at the request end, earlier days at EndOfDay.
// Zero-length slices (a boundary landing exactly on midnight) are dropped.
func splitSegments(start, end model.DateTime) []segment {
	var segs []segment
	for date := start.Date; !date.After(end.Date); date = date.Next() {
		s := model.Midnight
		if date == start.Date {
			s = start.Time
		}
		e := model.EndOfDay
		if date == end.Date {
			e = end.Time
		}
		if s == e {
			continue
		}
		segs = append(segs, segment{date: date, start: s, end: e})
	}
	return segs
}

// conflicts checks probe against the would-be neighbors in date's ordered
// collection. Checking just the adjacent predecessor and successor suffices:
// the collection is kept overlap-free, so anything further away cannot reach
// across a non-overlapping neighbor.
func (m *Manager) conflicts(date model.Date, probe model.Event) bool {
	tree, ok := m.days[date]
	if !ok {
		return false
	}

	hit := false
	tree.DescendLessOrEqual(probe, func(ev model.Event) bool {
		hit = probe.Overlaps(ev)
		return false
	})
	if hit {
		return true
	}
	tree.AscendGreaterOrEqual(probe, func(ev model.Event) bool {
		hit = probe.Overlaps(ev)
		return false
	})
	return hit
}

// day returns date's event tree, creating the entry on first use.
func (m *Manager) day(date model.Date) *btree.BTreeG[model.Event] {
	tree, ok := m.days[date]
	if !ok {
		tree = btree.NewG(btreeDegree, model.Event.Less)
		m.days[date] = tree
	}
	return tree
}

// DaysEvents returns date's events in start-time order. The result is an
// independent snapshot; an absent day yields an empty slice.
func (m *Manager) DaysEvents(date model.Date) []model.Event {
	tree, ok := m.days[date]
	if !ok {
		return []model.Event{}
	}
	out := make([]model.Event, 0, tree.Len())
	tree.Ascend(func(ev model.Event) bool {
		out = append(out, ev)
		return true
	})
	return out
}

// TodaysRemainingEvents returns today's events whose end time is still ahead
// of the current time-of-day, preserving order.
func (m *Manager) TodaysRemainingEvents() []model.Event {
	now := m.clk.Now()
	return m.remainingEvents(model.DateOf(now), model.TimeOfDayOf(now))
}

func (m *Manager) remainingEvents(date model.Date, after model.TimeOfDay) []model.Event {
	events := m.DaysEvents(date)
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.End() > after {
			out = append(out, ev)
		}
	}
	return out
}

// NextAvailableSlot finds the earliest window of the given duration within
// date that does not collide with existing events. For today the window
// floor is the current time-of-day and only remaining events are considered;
// for any other day the floor is midnight. A window that would run past the
// end of the day, or a scan that exhausts the day's events without a fit,
// yields no slot; absence is a normal outcome, not an error.
func (m *Manager) NextAvailableSlot(date model.Date, duration time.Duration) (Slot, bool) {
	minutes := int(duration / time.Minute)
	if minutes <= 0 {
		return Slot{}, false
	}

	now := m.clk.Now()
	floor := model.Midnight
	var events []model.Event
	if date == model.DateOf(now) {
		floor = model.TimeOfDayOf(now)
		events = m.remainingEvents(date, floor)
	} else {
		events = m.DaysEvents(date)
	}

	start := floor
	end := start.Add(minutes)
	if end > model.EndOfDay {
		return Slot{}, false
	}
	if len(events) == 0 {
		return Slot{Start: start, End: end}, true
	}

	for _, ev := range events {
		if end < ev.Start() {
			return Slot{Start: start, End: end}, true
		}
		start = ev.End().Add(slotBuffer)
		end = start.Add(minutes)
		if end > model.EndOfDay {
			return Slot{}, false
		}
	}
	return Slot{}, false
}

// Dates returns every day holding at least one event, in ascending order.
func (m *Manager) Dates() []model.Date {
	out := make([]model.Date, 0, len(m.days))
	for date := range m.days {
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
