package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

func (a *App) Root(ctx context.Context, in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "CrewDesk CLI (type 'help' for commands)\n")
	if a.config.EmployeeID == "" {
		fmt.Fprintln(out, "Warning: no employee id configured; write operations will fail")
	}

	runREPL(ctx, a, bufio.NewScanner(in), out)
}
