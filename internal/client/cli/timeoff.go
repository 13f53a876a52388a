package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

func (a *App) TimeOff(ctx context.Context, out io.Writer) {
	requests, err := a.timeOff.List(ctx)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	if len(requests) == 0 {
		fmt.Fprintln(out, "No time-off requests.")
		return
	}
	for _, r := range requests {
		kind := "unpaid"
		if r.Paid {
			kind = "paid"
		}
		fmt.Fprintf(out, "%s  %s to %s  %.1fh %s  [%s]\n",
			r.ID,
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			r.Hours, kind, r.Status)
	}
}

func (a *App) Balance(ctx context.Context, out io.Writer) {
	b, err := a.timeOff.Balance(ctx)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "PTO: %.1fh available (%.1fh accrued, %.1fh used)\n",
		b.Available(), b.AccruedHours, b.UsedHours)
}

// RequestTimeOff walks the user through a submission: dates, hours, paid
// flag and an optional reason.
func (a *App) RequestTimeOff(ctx context.Context, out io.Writer, scanner *bufio.Scanner) {
	start, ok := promptDate(out, scanner, "Start date (YYYY-MM-DD)")
	if !ok {
		return
	}
	end, ok := promptDate(out, scanner, "End date (YYYY-MM-DD)")
	if !ok {
		return
	}

	hoursStr, ok := prompt(out, scanner, "Hours")
	if !ok {
		return
	}
	hours, err := strconv.ParseFloat(hoursStr, 64)
	if err != nil {
		fmt.Fprintln(out, "Hours must be a number")
		return
	}

	paidStr, ok := prompt(out, scanner, "Paid? (y/n)")
	if !ok {
		return
	}
	paid := strings.HasPrefix(strings.ToLower(paidStr), "y")

	reason, _ := prompt(out, scanner, "Reason (optional)")

	req, err := a.timeOff.Submit(ctx, models.TimeOffRequest{
		StartDate: start,
		EndDate:   end,
		Hours:     hours,
		Paid:      paid,
		Reason:    reason,
	})
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Submitted request %s (%s)\n", req.ID, req.Status)
}

func (a *App) CancelTimeOff(ctx context.Context, out io.Writer, id string) {
	if err := a.timeOff.Cancel(ctx, id); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintln(out, "Canceled", id)
}

// prompt prints a prompt and reads one trimmed line. ok is false on EOF.
func prompt(out io.Writer, scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Fprintf(out, "%s\n> ", label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func promptDate(out io.Writer, scanner *bufio.Scanner, label string) (time.Time, bool) {
	s, ok := prompt(out, scanner, label)
	if !ok {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		fmt.Fprintln(out, "Date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}
