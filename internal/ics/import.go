package ics

import (
	"bytes"
	"errors"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"simplecal/internal/calendar"
	appLog "simplecal/internal/log"
	"simplecal/internal/model"
	"simplecal/internal/store"
)

// Import parses the ICS file at path and replays each VEVENT into mgr as an
// AddEvent call, using the event's local wall-clock start and end. Events
// that cannot be parsed or that the engine rejects (overlap, bad interval)
// are logged and skipped; the calendar keeps whatever was admitted before
// and after them. Returns the number of events added.
func Import(path string, mgr *calendar.Manager) (int, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(body) == 0 {
		return 0, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "path", path)
		return 0, err
	}

	added, skipped := 0, 0
	for _, ve := range cal.Events() {
		start, serr := ve.GetStartAt()
		end, eerr := ve.GetEndAt()
		if serr != nil || eerr != nil {
			skipped++
			appLog.Debug("skipping vevent without usable times", "path", path)
			continue
		}

		title := ""
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			title = p.Value
		}
		title = store.SanitizeTitle(title)

		if err := mgr.AddEvent(title, toDateTime(start), toDateTime(end)); err != nil {
			skipped++
			appLog.Debug("skipping rejected vevent", "path", path, "title", title, "reason", err)
			continue
		}
		added++
	}

	appLog.Info("ics import completed", "path", path, "added", added, "skipped", skipped)
	return added, nil
}

// toDateTime takes the local wall-clock reading of t, truncated to the
// minute. Time zone handling beyond this conversion is out of scope.
func toDateTime(t time.Time) model.DateTime {
	local := t.In(time.Local)
	return model.DateTime{Date: model.DateOf(local), Time: model.TimeOfDayOf(local)}
}
