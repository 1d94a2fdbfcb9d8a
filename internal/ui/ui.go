package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"simplecal/internal/calendar"
	"simplecal/internal/clock"
	"simplecal/internal/config"
	"simplecal/internal/ics"
	"simplecal/internal/model"
	"simplecal/internal/store"
)

// Color definitions for terminal output.
var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

const (
	dateTimeHint = "2006-01-02 15:04"
	dateHint     = "2006-01-02"
)

// UI is the interactive menu surface over the appointment engine.
type UI struct {
	mgr *calendar.Manager
	clk clock.Clock
	cfg *config.Config
}

func New(mgr *calendar.Manager, clk clock.Clock, cfg *config.Config) *UI {
	return &UI{mgr: mgr, clk: clk, cfg: cfg}
}

// Run drives the menu loop until the user chooses to exit or interrupts.
// Saving is the caller's responsibility once Run returns.
func (u *UI) Run() error {
	fmt.Println(bold("Welcome to simplecal!"))

	items := []string{
		"Add an event",
		"List ALL events for today",
		"List all REMAINING events for today",
		"List ALL events for ANY day",
		"Find the next available slot on any day",
		"Export calendar to ICS",
		"Import events from ICS",
		"Save and exit",
	}

	for {
		menu := promptui.Select{
			Label:    "Select an option",
			Items:    items,
			Size:     len(items),
			HideHelp: true,
		}
		idx, _, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch idx {
		case 0:
			u.addEvent()
		case 1:
			u.listDay(model.DateOf(u.clk.Now()))
		case 2:
			u.listRemaining()
		case 3:
			if date, ok := u.promptDate("Day to list"); ok {
				u.listDay(date)
			}
		case 4:
			u.findSlot()
		case 5:
			u.exportICS()
		case 6:
			u.importICS()
		case 7:
			return nil
		}
	}
}

func (u *UI) addEvent() {
	title, ok := u.promptString(`Event title ("," becomes "-", blank to cancel)`)
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}
	title = store.SanitizeTitle(title)

	start, ok := u.promptDateTime("Start time")
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}
	end, ok := u.promptDateTime("End time")
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}

	if err := u.mgr.AddEvent(title, start, end); err != nil {
		fmt.Println(red("Failed to add event: " + err.Error()))
		return
	}
	fmt.Println(green("Event added."))
}

func (u *UI) listDay(date model.Date) {
	events := u.mgr.DaysEvents(date)
	if len(events) == 0 {
		fmt.Println(gray("No events on " + date.String() + "."))
		return
	}
	fmt.Println(cyan("Events on " + date.String() + ":"))
	printEvents(events)
}

func (u *UI) listRemaining() {
	events := u.mgr.TodaysRemainingEvents()
	if len(events) == 0 {
		fmt.Println(gray("No remaining events today."))
		return
	}
	fmt.Println(cyan("Today's remaining events:"))
	printEvents(events)
}

func (u *UI) findSlot() {
	date, ok := u.promptDate("Day to search")
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}
	minutes, ok := u.promptMinutes("Duration in minutes")
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}

	slot, found := u.mgr.NextAvailableSlot(date, time.Duration(minutes)*time.Minute)
	if !found {
		fmt.Println(gray("No available slot of that duration on " + date.String() + "."))
		return
	}
	fmt.Println(green("Next available slot on " + date.String() + ": " + slot.String()))
}

func (u *UI) exportICS() {
	path, ok := u.promptPath("Export path", u.cfg.ICSFile)
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}
	if err := ics.Export(u.mgr, path); err != nil {
		fmt.Println(red("Export failed: " + err.Error()))
		return
	}
	fmt.Println(green("Calendar exported to " + path + "."))
}

func (u *UI) importICS() {
	path, ok := u.promptPath("Import path", u.cfg.ICSFile)
	if !ok {
		fmt.Println(gray("Cancelled."))
		return
	}
	added, err := ics.Import(path, u.mgr)
	if err != nil {
		fmt.Println(red("Import failed: " + err.Error()))
		return
	}
	fmt.Println(green(fmt.Sprintf("Imported %d event(s).", added)))
}

func printEvents(events []model.Event) {
	for _, ev := range events {
		fmt.Printf(" - %s %s-%s\n", bold(ev.Title()), ev.Start(), ev.End())
	}
}

// promptString asks for free text. Blank input or an interrupt cancels.
func (u *UI) promptString(label string) (string, bool) {
	p := promptui.Prompt{Label: label}
	s, err := p.Run()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func (u *UI) promptDateTime(label string) (model.DateTime, bool) {
	p := promptui.Prompt{
		Label: label + " (" + dateTimeHint + ", blank to cancel)",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := model.ParseDateTime(s); err != nil {
				return errors.New("format is " + dateTimeHint)
			}
			return nil
		},
	}
	s, err := p.Run()
	if err != nil || strings.TrimSpace(s) == "" {
		return model.DateTime{}, false
	}
	dt, err := model.ParseDateTime(s)
	if err != nil {
		return model.DateTime{}, false
	}
	return dt, true
}

func (u *UI) promptDate(label string) (model.Date, bool) {
	p := promptui.Prompt{
		Label: label + " (" + dateHint + ", blank to cancel)",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := model.ParseDate(s); err != nil {
				return errors.New("format is " + dateHint)
			}
			return nil
		},
	}
	s, err := p.Run()
	if err != nil || strings.TrimSpace(s) == "" {
		return model.Date{}, false
	}
	date, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, false
	}
	return date, true
}

func (u *UI) promptMinutes(label string) (int, bool) {
	p := promptui.Prompt{
		Label:   label,
		Default: strconv.Itoa(u.cfg.DefaultSlotMinutes),
		Validate: func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				// Blank accepts the default.
				return nil
			}
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return errors.New("enter a positive number of minutes")
			}
			return nil
		},
	}
	s, err := p.Run()
	if err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return u.cfg.DefaultSlotMinutes, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (u *UI) promptPath(label, def string) (string, bool) {
	p := promptui.Prompt{Label: label, Default: def}
	s, err := p.Run()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
