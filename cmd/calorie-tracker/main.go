package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dukerupert/calorie-tracker/internal/backup"
	"github.com/dukerupert/calorie-tracker/internal/catalog"
	"github.com/dukerupert/calorie-tracker/internal/config"
	"github.com/dukerupert/calorie-tracker/internal/database"
	"github.com/dukerupert/calorie-tracker/internal/logging"
	"github.com/dukerupert/calorie-tracker/internal/parser"
	"github.com/dukerupert/calorie-tracker/internal/store"
	"github.com/dukerupert/calorie-tracker/internal/tools"
)

const (
	serverName    = "daily-calorie-tracker"
	serverVersion = "1.0.0"
)

const usage = `Usage: calorie-tracker [command]

Commands:
  serve              run the MCP server on stdin/stdout (default)
  backup [-keep N]   write an encrypted snapshot of the meal database
  backups [-n N]     list recent snapshots
  restore <file>     replace the meal database with a snapshot (local path or s3://bucket/key)
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "backup":
		err = runBackup(ctx, cfg, logger, args)
	case "backups":
		err = listBackups(cfg, logger, args)
	case "restore":
		err = runRestore(ctx, cfg, logger, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	foods, err := catalog.Load()
	if err != nil {
		return err
	}

	meals := store.NewMealStore(db)
	count, err := meals.Count()
	if err != nil {
		return err
	}

	p := parser.New(foods, parser.WithMatchMode(cfg.MatchMode))
	handler := tools.NewHandler(
		meals,
		p,
		foods,
		logger.With("component", "tools"),
		tools.WithLocation(cfg.Location),
	)

	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	handler.Register(s)

	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(logging.ErrorLog(logger))

	logger.Info("calorie tracker running on stdio",
		"db_path", cfg.DBPath,
		"foods", foods.Len(),
		"meals", count,
		"match_mode", p.Mode(),
		"time_zone", cfg.Location.String(),
	)

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutting down")
	return nil
}

func backupConfig(cfg config.Config) backup.Config {
	return backup.Config{
		DBPath: cfg.DBPath,
		Dir:    cfg.Backup.Dir,
		S3:     backup.S3Config(cfg.Backup.S3),
	}
}

func runBackup(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	keep := fs.Int("keep", 0, "after backing up, keep only the N most recent snapshots (0 keeps all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	m := backup.NewManager(backupConfig(cfg), db, store.NewBackupStore(db), logger.With("component", "backup"))
	b, err := m.Run(ctx, cfg.Backup.Passphrase)
	if err != nil {
		return err
	}
	fmt.Println(b.Location)

	if *keep > 0 {
		removed, err := m.Prune(ctx, *keep)
		if err != nil {
			return fmt.Errorf("prune: %w", err)
		}
		logger.Info("pruned old backups", "removed", removed, "kept", *keep)
	}
	return nil
}

func listBackups(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("backups", flag.ContinueOnError)
	limit := fs.Int("n", 20, "number of snapshots to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	list, err := backup.NewManager(backupConfig(cfg), db, store.NewBackupStore(db), logger.With("component", "backup")).List(*limit)
	if err != nil {
		return err
	}
	for _, b := range list {
		line := fmt.Sprintf("%d\t%s\t%s\t%d", b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Status, b.SizeBytes)
		if b.Location != "" {
			line += "\t" + b.Location
		}
		if b.ErrorMessage != "" {
			line += "\t" + b.ErrorMessage
		}
		fmt.Println(line)
	}
	return nil
}

func runRestore(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	if len(args) != 1 {
		return errors.New("restore takes exactly one snapshot path")
	}
	m := backup.NewManager(backupConfig(cfg), nil, nil, logger.With("component", "backup"))
	return m.Restore(ctx, args[0], cfg.Backup.Passphrase)
}
