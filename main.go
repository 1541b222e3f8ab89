package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-backoffice/api"
	"restaurant-backoffice/bot"
	"restaurant-backoffice/cache"
	"restaurant-backoffice/config"
	"restaurant-backoffice/db"
	"restaurant-backoffice/events"
	"restaurant-backoffice/logger"
	"restaurant-backoffice/services"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Restaurant back-office: order taking, kitchen tickets and finance",
	Long: `Runs the staff Telegram bot, the kitchen ticket bot and the back-office
HTTP API on one Postgres database.

Run without arguments to start serving.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if log, err = logger.New(cfg.Log.Level, cfg.Log.Format); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the bots",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyMigrations(cfg.DB, log)
	},
}

var migrateDownSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return rollbackMigrations(cfg.DB, migrateDownSteps, log)
	},
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff accounts",
}

var (
	staffName  string
	staffPhone string
	staffRole  string
	staffRate  int64
)

var staffAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a staff member and print the login PIN",
	Long: `Creates a staff member and prints the generated PIN once.

Example:
  backoffice staff add --name "Aziza Karimova" --phone +998901234567 --role manager --rate 2500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := db.Init(ctx, cfg.DB); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()

		st, pin, err := services.AddStaff(ctx, staffName, staffPhone, staffRole, staffRate)
		if err != nil {
			return err
		}
		log.Info("staff added", zap.Int64("staff_id", st.ID), zap.String("role", st.Role))
		fmt.Fprintf(cmd.OutOrStdout(), "Staff #%d %s (%s)\nPIN: %s\n", st.ID, st.FullName, st.Role, pin)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateDownCmd)

	staffAddCmd.Flags().StringVar(&staffName, "name", "", "full name")
	staffAddCmd.Flags().StringVar(&staffPhone, "phone", "", "phone number used to log in")
	staffAddCmd.Flags().StringVar(&staffRole, "role", "waiter", "manager, waiter, cook or cashier")
	staffAddCmd.Flags().Int64Var(&staffRate, "rate", 0, "hourly rate in minor units")
	_ = staffAddCmd.MarkFlagRequired("name")
	_ = staffAddCmd.MarkFlagRequired("phone")
	staffCmd.AddCommand(staffAddCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, staffCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx, cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := applyMigrations(cfg.DB, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	var pub events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(log, cfg.Kafka.OrdersTopic, cfg.Kafka.Brokers...)
		log.Info("publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn("close publisher", zap.Error(err))
		}
	}()

	carts := services.NewPgCartStore(cache.NewRedisCartCache(rdb, cfg.Cart.TTL), log.Named("carts"))
	desk := services.NewDesk(carts, pub, log.Named("desk"))
	sessions := cache.NewRedisSessionStore(rdb, cfg.HTTP.SessionTTL)

	apiServer := api.NewServer(desk, api.DBStore{}, sessions, log.Named("api"), cfg.HTTP.RequestTimeout)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http api listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg, desk, log)
		if err != nil {
			return err
		}
		go b.Start(ctx)
	} else {
		log.Warn("TOKEN not set, telegram bots disabled")
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case serveErr = <-errCh:
		log.Error("http server", zap.Error(serveErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return serveErr
}
