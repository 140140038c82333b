package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/epistemolab/epistemo/db"
	"github.com/epistemolab/epistemo/internal/server"
)

var serveFlags struct {
	addr     string
	dbPath   string
	config   string
	logLevel string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the belief-revision agent HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := server.LoadConfig(serveFlags.config)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveFlags.addr
		}
		if cmd.Flags().Changed("db") {
			cfg.DBPath = serveFlags.dbPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = serveFlags.logLevel
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.LogLevel),
		}))
		slog.SetDefault(log)

		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		store, err := db.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		srv, err := server.New(store, log)
		if err != nil {
			return err
		}
		return srv.Run(cfg.Addr)
	},
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveFlags.dbPath, "db", ".epistemo/agents.db", "sqlite database path")
	serveCmd.Flags().StringVar(&serveFlags.config, "config", "", "yaml config file")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}
