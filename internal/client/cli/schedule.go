package cli

import (
	"context"
	"fmt"
	"io"
	"time"
)

func (a *App) Schedule(ctx context.Context, out io.Writer, day string) {
	when := time.Now().UTC()
	if day != "" {
		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			fmt.Fprintln(out, "Day must be YYYY-MM-DD")
			return
		}
		when = parsed
	}

	shifts, err := a.shift.Schedule(ctx, when)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	if len(shifts) == 0 {
		fmt.Fprintln(out, "No shifts scheduled.")
		return
	}
	for _, s := range shifts {
		status := "scheduled"
		if s.Clocked() {
			status = "clocked in"
		} else if w := s.Worked(); w > 0 {
			status = fmt.Sprintf("worked %s", w)
		}
		fmt.Fprintf(out, "%s  %s-%s  school %s  %s\n",
			s.ID,
			s.StartsAt.Format("15:04"), s.EndsAt.Format("15:04"),
			s.SchoolID, status)
	}
}

func (a *App) ClockIn(ctx context.Context, out io.Writer, shiftID string) {
	s, err := a.shift.ClockIn(ctx, shiftID)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Clocked in at %s\n", s.ClockInAt.Format("15:04:05"))
}

func (a *App) ClockOut(ctx context.Context, out io.Writer, shiftID string) {
	s, err := a.shift.ClockOut(ctx, shiftID)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Clocked out, worked %s\n", s.Worked())
}
