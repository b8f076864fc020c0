// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package process sets up process-wide concerns for feedbay commands:
// configuration loading, logging and signal-aware contexts.
package process

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is the default process error class.
var Error = errs.Class("process")

// DefaultConfigPath returns the default config file location for a
// command.
func DefaultConfigPath(name string) string {
	if name == "" {
		name = filepath.Base(os.Args[0])
	}
	path := filepath.Join(".feedbay", fmt.Sprintf("%s.yaml", name))
	home, err := os.UserHomeDir()
	if err != nil {
		log.Println(err)
		return path
	}
	return filepath.Join(home, path)
}

// Execute runs a *cobra.Command with process-wide configuration: flags
// may be supplied via config file and FEEDBAY_* environment variables.
func Execute(cmd *cobra.Command) {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	cmd.PersistentFlags().AddFlagSet(pflag.CommandLine)

	cobra.OnInitialize(func() {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			log.Fatal(err)
		}
		viper.SetEnvPrefix("feedbay")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()

		cfgFile, _ := cmd.Flags().GetString("config")
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			// a missing config file is fine, flags and env still apply
			_ = viper.ReadInConfig()
		}
	})

	Must(cmd.Execute())
}

// Bind registers the config flag on a command's persistent flag set.
func Bind(flags *pflag.FlagSet, name string) {
	flags.String("config", DefaultConfigPath(name), "config file")
}

// Ctx returns a context cancelled on SIGINT or SIGTERM.
func Ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// Must can be used for default error handling.
func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
