package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sunmobiir/meetsync/pkg/meet"
	"github.com/sunmobiir/meetsync/pkg/state"
)

func watchCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect to a meeting and log state changes",
		Long: `Connect to the signaling server, subscribe to one meeting, and log
every state change as it is applied. Prometheus metrics and a health
endpoint are served on the metrics address.

Configuration is resolved from flags, then MEETSYNC_* environment
variables, then the config file.

Examples:
  meetsync watch --endpoint=wss://class.example.com/ws --token=$TOKEN --meet-id=42
  MEETSYNC_TOKEN=xyz meetsync watch --endpoint=ws://localhost:8080/ws --meet-id=7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, configFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default meetsync.yaml in the working directory)")
	cmd.Flags().String("endpoint", "", "Signaling server WebSocket URL")
	cmd.Flags().String("token", "", "Session token")
	cmd.Flags().Int64("meet-id", 0, "Meeting id to subscribe to")
	cmd.Flags().String("metrics-addr", ":9090", "Address for metrics and health endpoints")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-json", false, "Log as JSON instead of text")

	return cmd
}

func loadWatchConfig(cmd *cobra.Command, configFile string) (*viper.Viper, error) {
	v := viper.New()
	for _, flag := range []string{"endpoint", "token", "meet-id", "metrics-addr", "log-level", "log-json"} {
		if err := v.BindPFlag(flag, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}
	v.SetEnvPrefix("MEETSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("meetsync")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func newLogger(level string, json bool) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lv}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}

func runWatch(cmd *cobra.Command, configFile string) error {
	v, err := loadWatchConfig(cmd, configFile)
	if err != nil {
		return err
	}

	endpoint := v.GetString("endpoint")
	token := v.GetString("token")
	meetID := v.GetInt64("meet-id")
	if endpoint == "" {
		return errors.New("endpoint is required")
	}
	if token == "" {
		return errors.New("token is required")
	}
	if meetID == 0 {
		return errors.New("meet-id is required")
	}

	logger, err := newLogger(v.GetString("log-level"), v.GetBool("log-json"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	sess := meet.NewSession(meet.Config{
		Endpoint: endpoint,
		Token:    token,
		MeetID:   meetID,
		Logger:   logger,
	})
	unsub := sess.Store().Subscribe(func(c state.Change) {
		logChange(logger, sess, c)
	})
	defer unsub()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSrv := startMetricsServer(v.GetString("metrics-addr"), logger)

	logger.Info("starting", "endpoint", endpoint, "meet_id", meetID, "version", version)
	sess.Start(ctx)

	<-ctx.Done()
	logger.Info("shutting down")
	sess.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	return nil
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	return srv
}

func logChange(logger *slog.Logger, sess *meet.Session, c state.Change) {
	switch c.Kind {
	case state.ChangeRoster:
		logger.Info("roster changed", "participants", len(sess.Store().Roster().Participants()))
	case state.ChangeChat:
		logger.Info("chat changed", "messages", len(sess.Store().Chat().Messages()))
	case state.ChangeMeeting:
		snap := sess.Store().Meeting().Snapshot()
		logger.Info("meeting changed", "title", snap.Title, "panel", snap.ActivePanel)
	case state.ChangeQuiz:
		logger.Info("quiz changed", "questions", len(sess.Store().Quiz().Questions()))
	case state.ChangeConnection:
		logger.Info("connection changed", "state", sess.Store().ConnectionState())
	}
}
