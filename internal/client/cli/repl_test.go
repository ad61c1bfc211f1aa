package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls  []string
	args   [][]string
	before int
	fail   map[string]error
}

func (f *fakeExec) commands() map[string]command {
	cmds := map[string]command{}
	for _, name := range []string{"login", "group", "search", "logout"} {
		name := name
		cmds[name] = func(_ context.Context, args []string) error {
			f.calls = append(f.calls, name)
			f.args = append(f.args, args)
			return f.fail[name]
		}
	}
	return cmds
}

func (f *fakeExec) helpText() string                { return "help text" }
func (f *fakeExec) beforeCommand(_ context.Context) { f.before++ }

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	lines := capturePrint(t)
	input := strings.Join([]string{"help", "", "login", "GROUP o+", "search", "foobar", "exit", "logout"}, "\n")
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "(guest /)" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "group", "search"}, exec.calls)
	assert.Equal(t, []string{"o+"}, exec.args[1])
	assert.Contains(t, *lines, "help text")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
	assert.Contains(t, *lines, "lifelink (guest /)>")
	assert.Equal(t, 7, exec.before)
}

func TestRunREPL_ReportsUserMessage(t *testing.T) {
	lines := capturePrint(t)
	exec := &fakeExec{fail: map[string]error{
		"search": apperror.Transport("Network error during search.", errors.New("dial tcp: refused")),
		"login":  errors.New("read input: EOF"),
	}}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("search\nlogin\n"))

	assert.Contains(t, *lines, "Error: Network error during search.")
	assert.Contains(t, *lines, "Error: read input: EOF")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrint(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("login"))

	assert.Equal(t, []string{"login"}, exec.calls)
}
