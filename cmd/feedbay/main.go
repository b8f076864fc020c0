// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/feedbay/feedbay"
	"github.com/feedbay/feedbay/process"
	"github.com/feedbay/feedbay/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "feedbay",
		Short: "Feedbay feed aggregation and marketplace server",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the feedbay server",
		RunE:  cmdRun,
	}
	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Write a config file with the current settings",
		RunE:  cmdSetup,
	}
)

func init() {
	process.Bind(rootCmd.PersistentFlags(), "feedbay")

	flags := rootCmd.PersistentFlags()
	flags.String("server.address", ":8080", "api http listening address")
	flags.String("server.auth-token", "", "authorization token required for api requests")
	flags.String("storage.backend", "redis", "key value backend: redis or bolt")
	flags.String("storage.redis.address", "localhost:6379", "redis server address")
	flags.String("storage.redis.password", "", "redis server password")
	flags.Int("storage.redis.db", 0, "redis database number")
	flags.String("storage.bolt.path", "feedbay.db", "path of the bolt database file")
	flags.String("database.path", "market.db", "path of the marketplace sqlite database file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
}

func loadConfig(cmd *cobra.Command) (feedbay.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return feedbay.Config{}, err
	}
	return feedbay.Config{
		Server: server.Config{
			Address:   viper.GetString("server.address"),
			AuthToken: viper.GetString("server.auth-token"),
		},
		Storage: feedbay.StorageConfig{
			Backend: viper.GetString("storage.backend"),
			Redis: feedbay.RedisConfig{
				Address:  viper.GetString("storage.redis.address"),
				Password: viper.GetString("storage.redis.password"),
				DB:       viper.GetInt("storage.redis.db"),
			},
			Bolt: feedbay.BoltConfig{
				Path: viper.GetString("storage.bolt.path"),
			},
		},
		Database: feedbay.DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
	}, nil
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	peer, err := feedbay.New(ctx, log, config)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, peer.Close()) }()

	log.Info("feedbay server started",
		zap.String("address", peer.API.Listener.Addr().String()),
		zap.String("storage", config.Storage.Backend),
	)
	return peer.Run(ctx)
}

func cmdSetup(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		cfgFile = process.DefaultConfigPath("feedbay")
	}
	if err := os.MkdirAll(filepath.Dir(cfgFile), 0700); err != nil {
		return err
	}
	return viper.SafeWriteConfigAs(cfgFile)
}

func main() {
	process.Execute(rootCmd)
}
