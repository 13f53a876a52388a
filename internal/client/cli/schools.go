package cli

import (
	"context"
	"fmt"
	"io"
)

func (a *App) Schools(ctx context.Context, out io.Writer) {
	list, err := a.school.List(ctx)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No schools.")
		return
	}
	for _, s := range list {
		fmt.Fprintf(out, "%s  %s (%s, %s)\n", s.ID, s.Name, s.City, s.State)
	}
}

func (a *App) School(ctx context.Context, out io.Writer, id string) {
	s, err := a.school.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "%s\n%s\n%s, %s %s\n", s.Name, s.Address, s.City, s.State, s.Zip)
	if s.Notes != "" {
		fmt.Fprintln(out, "Notes:", s.Notes)
	}

	done, total, err := a.yearbook.Progress(ctx, id)
	if err == nil && total > 0 {
		fmt.Fprintf(out, "Yearbook checklist: %d/%d done\n", done, total)
	}
}

func (a *App) Checklist(ctx context.Context, out io.Writer, schoolID string) {
	entries, err := a.yearbook.Checklist(ctx, schoolID)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Checklist is empty.")
		return
	}
	for _, e := range entries {
		mark := " "
		if e.Done {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s  %s\n", mark, e.ID, e.Label)
	}
}

func (a *App) Toggle(ctx context.Context, out io.Writer, entryID string) {
	entry, err := a.yearbook.Toggle(ctx, entryID, true)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Marked done: %s\n", entry.Label)
}
