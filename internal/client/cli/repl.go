package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	Schools(ctx context.Context, out io.Writer)
	School(ctx context.Context, out io.Writer, id string)
	Schedule(ctx context.Context, out io.Writer, day string)
	ClockIn(ctx context.Context, out io.Writer, shiftID string)
	ClockOut(ctx context.Context, out io.Writer, shiftID string)
	TimeOff(ctx context.Context, out io.Writer)
	Balance(ctx context.Context, out io.Writer)
	RequestTimeOff(ctx context.Context, out io.Writer, scanner *bufio.Scanner)
	CancelTimeOff(ctx context.Context, out io.Writer, id string)
	Checklist(ctx context.Context, out io.Writer, schoolID string)
	Toggle(ctx context.Context, out io.Writer, entryID string)
	Chat(ctx context.Context, out io.Writer, scanner *bufio.Scanner, conversationID string)
}

const helpText = `Available commands:
  schools                 list schools
  school <id>             show one school
  schedule [YYYY-MM-DD]   show shifts for a day (default today)
  clockin <shift-id>      record a clock-in punch
  clockout <shift-id>     record a clock-out punch
  timeoff                 list time-off requests
  balance                 show PTO balance
  request                 submit a time-off request
  cancel <request-id>     cancel a pending request
  checklist <school-id>   show a school's yearbook checklist
  toggle <entry-id>       mark a checklist entry done
  chat <conversation-id>  join a conversation
  exit | quit             leave the program`

// runREPL starts a simple read-eval-print loop for the CrewDesk CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Command handlers print their own errors; the loop stays resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprint(out, "crewdesk> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}

		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)

		case "schools":
			a.Schools(ctx, out)

		case "school":
			if arg == "" {
				fmt.Fprintln(out, "Usage: school <id>")
				continue
			}
			a.School(ctx, out, arg)

		case "schedule":
			a.Schedule(ctx, out, arg)

		case "clockin":
			if arg == "" {
				fmt.Fprintln(out, "Usage: clockin <shift-id>")
				continue
			}
			a.ClockIn(ctx, out, arg)

		case "clockout":
			if arg == "" {
				fmt.Fprintln(out, "Usage: clockout <shift-id>")
				continue
			}
			a.ClockOut(ctx, out, arg)

		case "timeoff":
			a.TimeOff(ctx, out)

		case "balance":
			a.Balance(ctx, out)

		case "request":
			a.RequestTimeOff(ctx, out, scanner)

		case "cancel":
			if arg == "" {
				fmt.Fprintln(out, "Usage: cancel <request-id>")
				continue
			}
			a.CancelTimeOff(ctx, out, arg)

		case "checklist":
			if arg == "" {
				fmt.Fprintln(out, "Usage: checklist <school-id>")
				continue
			}
			a.Checklist(ctx, out, arg)

		case "toggle":
			if arg == "" {
				fmt.Fprintln(out, "Usage: toggle <entry-id>")
				continue
			}
			a.Toggle(ctx, out, arg)

		case "chat":
			if arg == "" {
				fmt.Fprintln(out, "Usage: chat <conversation-id>")
				continue
			}
			a.Chat(ctx, out, scanner, arg)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
