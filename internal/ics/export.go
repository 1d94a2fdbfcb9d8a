package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"simplecal/internal/calendar"
	appLog "simplecal/internal/log"
	"simplecal/internal/model"
)

// Export writes every stored per-day event of mgr to path as an ICS
// calendar, one VEVENT per event. Times are written as local wall times;
// an EndOfDay terminus becomes midnight of the following day.
func Export(mgr *calendar.Manager, path string) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//simplecal//EN")

	count := 0
	for _, date := range mgr.Dates() {
		for _, ev := range mgr.DaysEvents(date) {
			ve := cal.AddEvent(eventUID(date, ev))
			ve.SetSummary(ev.Title())
			ve.SetDtStampTime(time.Now().UTC())
			ve.SetStartAt(date.At(ev.Start(), time.Local))
			ve.SetEndAt(date.At(ev.End(), time.Local))
			count++
		}
	}

	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o600); err != nil {
		return err
	}
	appLog.Info("ics export completed", "path", path, "event_count", count)
	return nil
}

// eventUID derives a stable UID for a stored event from its identity
// (date, bounds, title), so repeated exports of the same calendar agree.
func eventUID(date model.Date, ev model.Event) string {
	sum := sha256.Sum256([]byte(date.String() + "|" + ev.Start().String() + "|" + ev.End().String() + "|" + ev.Title()))
	return hex.EncodeToString(sum[:8]) + "@simplecal"
}
