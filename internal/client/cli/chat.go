package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/crewdesk-app/crewdesk/internal/client/chat"
	"github.com/crewdesk-app/crewdesk/internal/client/feed"
	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// Chat joins a conversation feed: live updates print as they arrive,
// typed lines are sent optimistically, /more pages older history and
// /quit leaves the conversation.
//
// Feed callbacks run on the reconciler's goroutine while the REPL loop
// writes prompts and errors, so all output goes through one serialized
// writer for the duration of the conversation.
func (a *App) Chat(ctx context.Context, out io.Writer, scanner *bufio.Scanner, conversationID string) {
	w := &syncWriter{w: out}
	printer := newFeedPrinter(w, a.config.EmployeeID)

	transport := chat.NewTransport(a.config.ServerBaseURL, a.config.AccessToken, a.redis, a.logger)

	r := feed.NewReconciler(conversationID, a.config.EmployeeID, transport, chat.Convert, feed.Options{
		PageSize: a.config.PageSize,
		Logger:   a.logger,
		OnChange: printer.apply,
		OnError: func(err error) {
			fmt.Fprintln(w, "Error:", err)
		},
	})

	// Start applies the initial page and emits it through OnChange, so the
	// backlog is already printed once Start returns.
	if err := r.Start(ctx); err != nil {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	defer r.Close()

	fmt.Fprintln(w, "-- joined", conversationID, "(/more for history, /quit to leave) --")

	for {
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			return

		case "/more":
			if !r.CanLoadMore() {
				fmt.Fprintln(w, "-- no older messages --")
				continue
			}
			if err := r.RequestMore(ctx); err != nil {
				fmt.Fprintln(w, "Error:", err)
			}

		case "/read":
			r.MarkRead(ctx)

		default:
			if _, err := r.Submit(ctx, feed.Draft{Body: line}); err != nil {
				fmt.Fprintln(w, "Error:", err)
			}
		}
	}
}

// syncWriter serializes writes from the REPL loop and the feed callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// feedPrinter turns feed snapshots into terminal lines, printing each
// message once. The user's own sends show up first as a pending echo; the
// confirmed copy arrives later under a new server id and is suppressed so
// the line does not repeat.
type feedPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	self   string
	seen   map[string]bool
	echoed map[string]int
}

func newFeedPrinter(out io.Writer, self string) *feedPrinter {
	return &feedPrinter{
		out:    out,
		self:   self,
		seen:   make(map[string]bool),
		echoed: make(map[string]int),
	}
}

func (p *feedPrinter) apply(messages []models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, m := range messages {
		if p.seen[m.ID] {
			continue
		}
		p.seen[m.ID] = true

		sig := m.AuthorID + "\x00" + m.Body + "\x00" + m.AttachmentRef
		if m.Pending {
			p.echoed[sig]++
		} else if m.AuthorID == p.self && p.echoed[sig] > 0 {
			p.echoed[sig]--
			continue
		}
		printMessage(p.out, m)
	}
}

func printMessage(out io.Writer, m models.Message) {
	marker := ""
	if m.Pending {
		marker = " (sending)"
	}
	fmt.Fprintf(out, "[%s] %s: %s%s\n",
		m.CreatedAt.Format("15:04"), m.AuthorID, m.Body, marker)
}
