// Package cmd - modctl commands
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/database"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/lock"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/logger"
	"github.com/imadgeboyega/kiekky-nearby/internal/config"
	"github.com/imadgeboyega/kiekky-nearby/internal/moderation"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

var (
	actorID int64
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "modctl",
	Short: "Moderation operator CLI",
	Long: `Moderation operator CLI

Runs the same moderation actions as the admin API directly against the
database. Every mutating command needs --actor, the id of an admin user;
the action is audited under that id.

Commands:
    ban / unban      - ban state of a user
    adjust-trust     - adjust a trust score
    set-status       - set a report status
    reported-users   - review queue
    token            - mint an access token for testing`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&actorID, "actor", 0, "admin user id performing the action")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(banCmd, unbanCmd, trustCmd, statusCmd, reportedUsersCmd, tokenCmd)
}

func initConfig() error {
	if err := godotenv.Load(); err != nil && verbose {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	cfg = config.Load()

	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.Init(logger.Config{Level: level, Format: "pretty", ServiceName: "modctl"})
}

// backend is what a command needs to run moderation actions
type backend struct {
	db         *sqlx.DB
	redis      *redis.Client // nil with the local locker
	users      users.Repository
	reports    moderation.ReportService
	dispatcher *moderation.Dispatcher
}

func openBackend(ctx context.Context) (*backend, error) {
	if cfg.Store != "postgres" {
		return nil, fmt.Errorf("modctl needs STORE=postgres, got %q", cfg.Store)
	}

	db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{URL: cfg.DatabaseURL, MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return nil, err
	}

	var client *redis.Client
	locker := lock.NewLocalLocker(cfg.LockWait)
	if cfg.LockBackend == "redis" {
		client, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		locker = lock.NewRedisLocker(client, lock.RedisConfig{TTL: cfg.LockTTL, Wait: cfg.LockWait})
	}

	usersRepo := users.NewPostgresRepository(db)
	repo := moderation.NewPostgresRepository(db)
	audit := logger.NewAuditLogger(logger.Config{
		FileEnabled:   cfg.LogFileEnabled,
		FilePath:      cfg.LogFilePath,
		RotationSize:  cfg.LogRotationSize,
		RetentionDays: cfg.LogRetentionDays,
		ServiceName:   "modctl",
	})

	return &backend{
		db:         db,
		redis:      client,
		users:      usersRepo,
		reports:    moderation.NewReportService(usersRepo, repo, locker, nil, cfg.ReportedUsersWindow),
		dispatcher: moderation.NewDispatcher(usersRepo, repo, locker, nil, audit),
	}, nil
}

func (b *backend) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	errs = append(errs, b.db.Close())
	return errors.Join(errs...)
}

// actor resolves --actor to an admin. Non-admins are passed through so the
// dispatcher rejects them the same way the API does.
func (b *backend) actor(ctx context.Context) (auth.Actor, error) {
	if actorID <= 0 {
		return auth.Actor{}, fmt.Errorf("--actor is required")
	}
	u, err := b.users.GetByID(ctx, actorID)
	if err != nil {
		return auth.Actor{}, fmt.Errorf("load actor: %w", err)
	}
	return auth.Actor{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

// withActor opens the backend, resolves the actor and runs fn
func withActor(cmd *cobra.Command, fn func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	actor, err := b.actor(ctx)
	if err != nil {
		return err
	}

	out, err := fn(ctx, b, actor)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
