// Command emsctl runs administrative tasks against the EMS database.
//
//	emsctl payroll --month 1 --year 2024
//	emsctl seed-admin --email admin@example.com --password secret --name Admin
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/b2world/ems-backend/internal/app"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/config"
	"github.com/b2world/ems-backend/pkg/logger"
)

const usage = `usage: emsctl <command> [flags]

commands:
  payroll      generate payroll for a month
  seed-admin   create an administrator account
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "emsctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "payroll":
		return runPayroll(ctx, args[1:], out)
	case "seed-admin":
		return runSeedAdmin(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type payrollFlags struct {
	month int
	year  int
}

func parsePayrollFlags(args []string, now time.Time) (payrollFlags, error) {
	prev := now.AddDate(0, -1, -now.Day()+1)
	f := payrollFlags{}
	fs := pflag.NewFlagSet("payroll", pflag.ContinueOnError)
	fs.IntVar(&f.month, "month", int(prev.Month()), "month to generate (1-12), defaults to last month")
	fs.IntVar(&f.year, "year", prev.Year(), "four-digit year")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func runPayroll(ctx context.Context, args []string, out io.Writer) error {
	f, err := parsePayrollFlags(args, time.Now())
	if err != nil {
		return err
	}

	a, log, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	a.Queue.Start(ctx)

	summary, err := a.Payroll.Generate(ctx, f.month, f.year)
	if err != nil {
		return fmt.Errorf("payroll %02d/%d: %w", f.month, f.year, err)
	}
	log.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("payroll run finished")

	fmt.Fprintf(out, "payroll %02d/%d: %d working days\n", summary.Month, summary.Year, summary.WorkingDays)
	for _, it := range summary.Items {
		line := fmt.Sprintf("  %-24s %-10s %s", it.Name, it.Outcome, it.NetSalary.StringFixed(2))
		if it.Reason != "" {
			line += "  (" + it.Reason + ")"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "processed=%d skipped=%d failed=%d total_net=%s\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.TotalNetAmount.StringFixed(2))
	return nil
}

func parseSeedAdminFlags(args []string) (ports.RegisterInput, error) {
	in := ports.RegisterInput{Role: domain.RoleAdmin}
	fs := pflag.NewFlagSet("seed-admin", pflag.ContinueOnError)
	fs.StringVar(&in.Email, "email", "", "administrator email (required)")
	fs.StringVar(&in.Password, "password", "", "administrator password (required)")
	fs.StringVar(&in.Name, "name", "Administrator", "display name")
	if err := fs.Parse(args); err != nil {
		return in, err
	}
	if in.Email == "" || in.Password == "" {
		return in, errors.New("--email and --password are required")
	}
	return in, nil
}

func runSeedAdmin(ctx context.Context, args []string, out io.Writer) error {
	in, err := parseSeedAdminFlags(args)
	if err != nil {
		return err
	}

	a, _, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	user, err := a.Users.Create(ctx, in)
	if errors.Is(err, domain.ErrConflict) {
		fmt.Fprintf(out, "user %s already exists\n", in.Email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	fmt.Fprintf(out, "created admin %s (%s)\n", user.Email, user.ID)
	return nil
}

func open(ctx context.Context) (*app.App, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "emsctl", Output: os.Stderr})
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, log, err
	}
	return a, log, nil
}
