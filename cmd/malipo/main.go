package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/malipo/internal/band"
	"github.com/smallbiznis/malipo/internal/catalog"
	"github.com/smallbiznis/malipo/internal/clock"
	"github.com/smallbiznis/malipo/internal/company"
	"github.com/smallbiznis/malipo/internal/computation"
	computationdomain "github.com/smallbiznis/malipo/internal/computation/domain"
	"github.com/smallbiznis/malipo/internal/config"
	"github.com/smallbiznis/malipo/internal/migration"
	"github.com/smallbiznis/malipo/internal/observability"
	"github.com/smallbiznis/malipo/internal/staff"
	"github.com/smallbiznis/malipo/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	switch args[0] {
	case "migrate":
		migrateCmd()
	case "run":
		if len(args) != 2 {
			printUsage()
			os.Exit(2)
		}
		runCmd(args[1])
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: malipo <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  migrate               apply schema migrations and seed statutory bands")
	fmt.Fprintln(os.Stderr, "  run <computation-id>  execute a payroll computation, one JSON line per staff")
}

func baseModules() fx.Option {
	return fx.Options(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		company.Module,
		staff.Module,
		band.Module,
		catalog.Module,
		computation.Module,
		migration.Module,
	)
}

// migrateCmd boots the app far enough for migration.Module to run, then exits.
func migrateCmd() {
	app := fx.New(
		baseModules(),
		fx.Invoke(func(sd fx.Shutdowner) error {
			return sd.Shutdown()
		}),
	)
	app.Run()
}

func runCmd(raw string) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid computation id %q\n", raw)
		os.Exit(2)
	}

	app := fx.New(
		baseModules(),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, svc computationdomain.Service, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := 0
						if err := streamRun(context.Background(), svc, id); err != nil {
							log.Error("computation run failed", zap.String("computation_id", id.String()), zap.Error(err))
							code = 1
						}
						_ = sd.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
}

type staffLine struct {
	StaffNumber string                     `json:"staff_number"`
	Name        string                     `json:"name"`
	Values      map[string]decimal.Decimal `json:"values,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

func streamRun(ctx context.Context, svc computationdomain.Service, id snowflake.ID) error {
	results, err := svc.Run(ctx, id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	failed := false
	for res := range results {
		line := staffLine{
			StaffNumber: res.Staff.StaffNumber,
			Name:        res.Staff.FullName(),
			Values:      res.Values,
		}
		if res.Err != nil {
			failed = true
			line.Error = res.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	if failed {
		return errors.New("one or more staff failed to evaluate")
	}
	return nil
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
