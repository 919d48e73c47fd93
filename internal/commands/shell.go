package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/reactbank/reactbank/internal/app"
	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/rates"
)

const shellPrompt = "reactbank> "

var errExit = errors.New("exit")

type shellCommand struct {
	usage string
	short string
	run   func(ctx context.Context, sh *shell, args []string) error
}

// shell is one interactive session. It keeps a single App, so the
// selected currency and fetched rates carry over between lines.
type shell struct {
	app      *app.App
	in       *bufio.Reader
	out      io.Writer
	commands map[string]shellCommand
}

func newShellCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Log in and start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	a, err := opts.open(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := requireLogin(ctx, a); err != nil {
		return err
	}
	if err := selectCurrency(ctx, a, opts.currency); err != nil {
		return err
	}

	sh := newShell(a, opts.input(cmd), cmd.OutOrStdout())
	return sh.loop(ctx)
}

func newShell(a *app.App, in *bufio.Reader, out io.Writer) *shell {
	sh := &shell{app: a, in: in, out: out}
	sh.commands = map[string]shellCommand{
		"list":     {"list", "list transactions", shellList},
		"balance":  {"balance [chart]", "show the total, optionally with a chart", shellBalance},
		"show":     {"show <ref>", "show a receipt", shellShow},
		"save":     {"save <ref> [format]", "save a receipt", shellSave},
		"share":    {"share <ref> [format] [file]", "share a receipt", shellShare},
		"currency": {"currency [code]", "show or change the display currency", shellCurrency},
		"rates":    {"rates", "fetch today's rates", shellRates},
		"refresh":  {"refresh", "pull to refresh", shellRefresh},
		"logout":   {"logout", "log out and log in again", shellLogout},
		"help":     {"help", "list commands", shellHelp},
		"exit":     {"exit", "leave the shell", shellExit},
	}
	sh.commands["quit"] = sh.commands["exit"]
	return sh
}

func (sh *shell) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(sh.out, shellPrompt)
		line, err := sh.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(sh.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parsing line: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	c, ok := sh.commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return c.run(ctx, sh, args[1:])
}

func needArgs(args []string, lo, hi int, usage string) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func shellList(_ context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 0, "list"); err != nil {
		return err
	}
	return printList(sh.out, sh.app)
}

func shellBalance(_ context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 3, "balance [chart [width height]]"); err != nil {
		return err
	}
	if len(args) == 0 {
		return printBalance(sh.out, sh.app, false, 0, 0)
	}
	if args[0] != "chart" {
		return errors.New("usage: balance [chart [width height]]")
	}
	width, height := defaultChartWidth, defaultChartHeight
	if len(args) == 3 {
		var err error
		if width, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("width: %w", err)
		}
		if height, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("height: %w", err)
		}
	}
	return printBalance(sh.out, sh.app, true, width, height)
}

func shellShow(_ context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 1, 1, "show <ref>"); err != nil {
		return err
	}
	return printReceipt(sh.out, sh.app, args[0])
}

func shellSave(_ context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 1, 2, "save <ref> [format]"); err != nil {
		return err
	}
	return saveReceipt(sh.out, sh.app, args[0], argAt(args, 1))
}

func shellShare(_ context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 1, 3, "share <ref> [format] [file]"); err != nil {
		return err
	}
	return shareReceipt(sh.out, sh.app, args[0], argAt(args, 1), argAt(args, 2))
}

func shellCurrency(ctx context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 1, "currency [code]"); err != nil {
		return err
	}
	if len(args) == 0 {
		snap := sh.app.Store.Snapshot()
		fmt.Fprintf(sh.out, "Selected: %s (%s)\n", snap.Selected, snap.State())
		if snap.RateError != "" {
			fmt.Fprintf(sh.out, "! %s\n", snap.RateError)
		}
		return nil
	}

	code, err := currency.Parse(args[0])
	if err != nil {
		return err
	}
	if err := sh.app.Store.Select(ctx, code); err != nil && !errors.Is(err, rates.ErrRateFetch) {
		return err
	}
	printSummary(sh.out, sh.app.Summary())
	return nil
}

func shellRates(ctx context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 0, "rates"); err != nil {
		return err
	}
	return printRates(ctx, sh.out, sh.app)
}

func shellRefresh(ctx context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 0, "refresh"); err != nil {
		return err
	}
	return refresh(ctx, sh.out, sh.app)
}

// shellLogout resets the session and asks for the passcode again. Failing
// that login ends the shell.
func shellLogout(ctx context.Context, sh *shell, args []string) error {
	if err := needArgs(args, 0, 0, "logout"); err != nil {
		return err
	}
	sh.app.Gate.Logout()
	fmt.Fprintln(sh.out, "Logged out.")
	if err := requireLogin(ctx, sh.app); err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
		return errExit
	}
	return nil
}

func shellHelp(_ context.Context, sh *shell, _ []string) error {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		if name != "quit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c := sh.commands[name]
		fmt.Fprintf(sh.out, "  %-28s %s\n", c.usage, c.short)
	}
	return nil
}

func shellExit(context.Context, *shell, []string) error { return errExit }

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
