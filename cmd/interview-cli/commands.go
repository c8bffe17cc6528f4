package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/target/interview-ui/internal/domain/model"
	"github.com/target/interview-ui/internal/export"
	"github.com/target/interview-ui/internal/service"
)

func runLogin(cmdCtx *commandContext, args []string) error {
	var (
		opts     commonOptions
		email    string
		password string
	)
	fs := newFlagSet("login", &opts)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if password == "" {
		p, err := readLine(cmdCtx.In)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = p
	}

	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	auth := service.NewAuthService(service.AuthServiceOptions{API: sess.client.Public(), Logger: cmdCtx.Logger})
	profile, err := auth.SignIn(cmdCtx.Ctx, sess.manager, model.SignInRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	return writef(cmdCtx.Out, "Signed in as %s (%s)\n", name, profile.Role.Label())
}

func runLogout(cmdCtx *commandContext, args []string) error {
	var opts commonOptions
	if err := newFlagSet("logout", &opts).Parse(args); err != nil {
		return err
	}
	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	// Logout drops the in-memory session even when the file cannot be removed.
	if err := sess.manager.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Signed out\n")
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	var opts commonOptions
	if err := newFlagSet("whoami", &opts).Parse(args); err != nil {
		return err
	}
	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	current, err := sess.require()
	if err != nil {
		return err
	}
	return printJSON(cmdCtx.Out, current.Claims, opts.Query)
}

type dashboardOutput struct {
	Role      string          `json:"role"`
	Dashboard model.Dashboard `json:"dashboard"`
}

func runDashboard(cmdCtx *commandContext, args []string) error {
	var (
		opts commonOptions
		q    service.DashboardQuery
	)
	fs := newFlagSet("dashboard", &opts)
	fs.StringVar(&q.JobDescription, "jd", "", "job description to list candidates for (hr)")
	fs.IntVar(&q.Page, "page", 1, "log page (admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	current, err := sess.require()
	if err != nil {
		return err
	}

	dash, err := service.NewDashboardService(cmdCtx.Logger).Load(cmdCtx.Ctx, sess.api(), current.Claims, q)
	if err != nil {
		return err
	}
	return printJSON(cmdCtx.Out, dashboardOutput{Role: string(dash.Role()), Dashboard: dash}, opts.Query)
}

func runReport(cmdCtx *commandContext, args []string) error {
	var opts commonOptions
	fs := newFlagSet("report", &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := strings.TrimSpace(fs.Arg(0))
	if id == "" {
		return errors.New("usage: interview-cli report [flags] <analysis-id>")
	}
	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	if _, err := sess.require(); err != nil {
		return err
	}

	report, err := sess.api().Report(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	return printJSON(cmdCtx.Out, report, opts.Query)
}

func runAdminLogs(cmdCtx *commandContext, args []string) error {
	var (
		opts   commonOptions
		page   int
		limit  int
		output string
	)
	fs := newFlagSet("admin-logs", &opts)
	fs.IntVar(&page, "page", 1, "page number")
	fs.IntVar(&limit, "limit", model.DefaultLogPageSize, "entries per page")
	fs.StringVar(&output, "xlsx", "", "write the page and metrics to this spreadsheet instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := openSession(cmdCtx, opts)
	if err != nil {
		return err
	}
	if _, err := sess.require(); err != nil {
		return err
	}

	api := sess.api()
	logs, err := api.AdminLogs(cmdCtx.Ctx, page, limit)
	if err != nil {
		return err
	}
	if output == "" {
		return printJSON(cmdCtx.Out, logs, opts.Query)
	}

	metrics, err := api.AdminMetrics(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	return writeFile(output, func(w io.Writer) error {
		return export.AdminLogs(w, metrics, logs)
	})
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("no input")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path) // #nosec G304 - path is chosen by the operator
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fill(f)
}
