package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

type command func(ctx context.Context, args []string) error

// execIface is the command surface the REPL drives. App satisfies it;
// tests use a stub.
type execIface interface {
	commands() map[string]command
	helpText() string
	beforeCommand(ctx context.Context)
}

// runREPL reads one command per line and dispatches it. A failing command
// prints its user message and the loop carries on. It returns on EOF or
// "exit"/"quit".
//
// Commands prompt for their own input from the same reader, so the loop
// reads line by line instead of scanning ahead.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	cmds := a.commands()
	for {
		a.beforeCommand(ctx)
		printlnFn(fmt.Sprintf("lifelink %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := strings.ToLower(parts[0]), parts[1:]

		switch name {
		case "help":
			printlnFn(a.helpText())
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if err := cmd(ctx, args); err != nil {
			printlnFn("Error: " + apperror.UserMessage(err, err.Error()))
		}
	}
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"register": a.Register,
		"login":    a.Login,
		"logout":   a.Logout,
		"goto":     a.GoTo,
		"whoami":   a.Whoami,
		"profile":  a.Profile,
		"edit":     a.Edit,
		"location": a.Location,
		"toggle":   a.Toggle,
		"group":    a.Group,
		"radius":   a.Radius,
		"center":   a.Center,
		"locate":   a.Locate,
		"search":   a.Search,
		"reset":    a.Reset,
		"results":  a.Results,
		"map":      a.Map,
		"stats":    a.Stats,
	}
}

func (a *App) helpText() string {
	snap := a.session.Snapshot()
	switch {
	case !snap.Authenticated():
		return "Available commands: register, login, goto <path>, exit"
	case snap.Role() == models.RoleMedical:
		return "Available commands: group <bg>, radius <m>, center <lat> <lon>, locate, search, " +
			"results [n], reset, map, stats, whoami, goto <path>, logout, exit"
	default:
		return "Available commands: profile, edit, location [<lat> <lon>], toggle, whoami, goto <path>, logout, exit"
	}
}

// beforeCommand settles anything that happened in the background since
// the last prompt.
func (a *App) beforeCommand(ctx context.Context) {
	a.observeSession(ctx)
	a.flushNotices()
}
