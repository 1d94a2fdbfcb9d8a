package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"simplecal/internal/calendar"
	appLog "simplecal/internal/log"
	"simplecal/internal/model"
)

// NOTE: This file implements the flat-file persistence contract: one stored
// per-day event per line, "title,startTimestamp,endTimestamp", timestamps in
// the form 2006-01-02T15:04. Loading replays AddEvent per valid line and is
// resilient to partial or corrupt files.

// fieldsPerLine is the expected field count of a stored line.
const fieldsPerLine = 3

// SanitizeTitle replaces the persistence field separator with a dash so a
// title can never split a stored line.
func SanitizeTitle(title string) string {
	return strings.ReplaceAll(title, ",", "-")
}

// Load reads path and replays each valid line into mgr. A missing file is an
// empty calendar. Malformed lines (wrong field count, unparsable timestamps)
// and lines whose replay is rejected by the engine are skipped, not fatal.
func Load(path string, mgr *calendar.Manager) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("no event file, starting empty", "path", path)
			return nil
		}
		return err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = fieldsPerLine
	r.LazyQuotes = true

	loaded, skipped := 0, 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			appLog.Debug("skipping malformed event line", "path", path, "reason", err)
			continue
		}

		start, serr := model.ParseDateTime(rec[1])
		end, eerr := model.ParseDateTime(rec[2])
		if serr != nil || eerr != nil {
			skipped++
			appLog.Debug("skipping event line with bad timestamp", "path", path, "start", rec[1], "end", rec[2])
			continue
		}

		if err := mgr.AddEvent(rec[0], start, end); err != nil {
			skipped++
			appLog.Debug("skipping rejected event line", "path", path, "title", rec[0], "reason", err)
			continue
		}
		loaded++
	}

	appLog.Info("events loaded", "path", path, "loaded", loaded, "skipped", skipped)
	return nil
}

// Save writes every stored per-day event of mgr to path, one line per event.
// The write is atomic: temp file in the same directory, then rename.
func Save(path string, mgr *calendar.Manager) error {
	if path == "" {
		return errors.New("event file path is empty")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	count := 0
	for _, date := range mgr.Dates() {
		for _, ev := range mgr.DaysEvents(date) {
			rec := []string{
				SanitizeTitle(ev.Title()),
				formatStamp(date, ev.Start()),
				formatStamp(date, ev.End()),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
			count++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	appLog.Info("events saved", "path", path, "count", count)
	return nil
}

// formatStamp renders a stored timestamp. An EndOfDay terminus has no
// same-day representation, so it is stored as midnight of the next day;
// replaying that line reproduces the original segment.
func formatStamp(date model.Date, t model.TimeOfDay) string {
	if t == model.EndOfDay {
		return date.Next().String() + "T00:00"
	}
	return date.String() + "T" + t.String()
}

// writeFileAtomic writes data to path via a temp file + rename, with 0600
// permissions on the final file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".simplecal-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
