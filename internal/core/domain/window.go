package domain

import "time"

// Window is a half-open time interval [Start, End) occupied by an appointment.
type Window struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// NewWindow returns the window starting at start and lasting d.
func NewWindow(start time.Time, d time.Duration) Window {
	return Window{Start: start, End: start.Add(d)}
}

// Valid reports whether the window is non-empty (Start < End).
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether w and other share any instant.
// Windows that only touch at a boundary do not overlap.
func (w Window) Overlaps(other Window) bool {
	return Overlaps(w, other)
}

// In returns the window with both bounds expressed in loc.
func (w Window) In(loc *time.Location) Window {
	return Window{Start: w.Start.In(loc), End: w.End.In(loc)}
}

// Overlaps is the half-open intersection test: [a,b) and [c,d) overlap iff a < d && c < b.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// AnyOverlap returns the windows in existing that overlap w.
func AnyOverlap(w Window, existing []Window) []Window {
	var out []Window
	for _, e := range existing {
		if Overlaps(w, e) {
			out = append(out, e)
		}
	}
	return out
}
