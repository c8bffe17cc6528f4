// Command interview-cli talks to the interview backend from a terminal. Each
// invocation restores the session persisted in the token file, the same way a
// browser reload restores its cookie.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/target/interview-ui/config"
	"github.com/target/interview-ui/internal/bootstrap"
	"github.com/target/interview-ui/internal/ports"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader
	// Clock is nil outside tests.
	Clock ports.TimeProvider
}

func main() {
	// Diagnostics go to stderr so stdout stays machine-readable.
	logger := bootstrap.NewLogger(os.Stderr, config.LogConfig{Level: slog.LevelWarn, Format: config.LogFormatText})

	if len(os.Args) < 2 {
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if werr := writef(os.Stderr, "%s: %v\n", cmdName, runErr); werr != nil {
			logger.Error("print command error failed", "error", werr)
		}
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session token",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Remove the stored session token",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the identity of the stored session",
			run:         runWhoami,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Print the dashboard for the signed-in role",
			run:         runDashboard,
		},
		"report": {
			name:        "report",
			description: "Print the evaluation report for an analysis id",
			run:         runReport,
		},
		"admin-logs": {
			name:        "admin-logs",
			description: "Print or export a page of LLM call logs (admin)",
			run:         runAdminLogs,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: interview-cli <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	all := commands()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-12s %s\n", name, all[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
