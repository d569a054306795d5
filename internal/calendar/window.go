package calendar

import "fmt"

// Window is a sprint's [Start, End] calendar span observed on a reference day.
type Window struct {
	Start     Date
	End       Date
	Reference Date
}

// NewWindow returns the window for start..end as seen on ref.
// It fails when end is before start.
func NewWindow(start, end, ref Date) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return Window{Start: start, End: end, Reference: ref}, nil
}

// TotalDays is the number of whole days between Start and End.
func (w Window) TotalDays() int {
	return w.End.Sub(w.Start)
}

// DaysElapsed is the number of days from Start to Reference, clamped to
// [0, TotalDays].
func (w Window) DaysElapsed() int {
	n := w.Reference.Sub(w.Start)
	if n < 0 {
		return 0
	}
	if total := w.TotalDays(); n > total {
		return total
	}
	return n
}

// DaysRemaining is TotalDays minus DaysElapsed.
func (w Window) DaysRemaining() int {
	return w.TotalDays() - w.DaysElapsed()
}

// Ended reports whether the reference day is after the last sprint day.
func (w Window) Ended() bool {
	return w.Reference.After(w.End)
}

// Day returns the calendar day at the given offset from Start.
func (w Window) Day(offset int) Date {
	return w.Start.AddDays(offset)
}
