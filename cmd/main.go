// Nmwifi is a terminal control panel for the Wi-Fi interface managed by
// NetworkManager. It lists nearby networks and lets the user connect,
// forget, rescan and toggle the radio through nmcli.
//
// Usage:
//
//	nmwifi [command] [flags]
//
// Running without arguments opens the interactive panel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nmwifi/gonetworkmanager"
	"nmwifi/internal/config"
	"nmwifi/internal/logging"
	"nmwifi/internal/tui"
	"nmwifi/internal/version"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Application crashed: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	logFile    string
	nmcliPath  string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "nmwifi",
	Short: "Terminal control panel for NetworkManager Wi-Fi",
	Long: `A terminal control panel for the wireless interface managed by NetworkManager.

Lists nearby networks and connects, forgets, rescans or toggles the radio
through nmcli. If no command is specified, the interactive panel opens.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPanel,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/nmwifi/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path")
	rootCmd.PersistentFlags().StringVar(&nmcliPath, "nmcli", "", "Path to the nmcli binary")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for each nmcli call (0 = none)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("nmcli") {
		cfg.NmcliPath = nmcliPath
	}
	if flags.Changed("timeout") {
		cfg.CommandTimeout = timeout
	}
	return cfg, cfg.Validate()
}

// commandContext is cmd's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newClient loads configuration, starts logging and returns a client whose
// nmcli binary has been checked.
func newClient(cmd *cobra.Command) (*gonetworkmanager.Client, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	if err := logging.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, cfg, err
	}
	logging.Info("starting", zap.String("version", version.Version), zap.String("command", cmd.Name()))
	logging.Debug("configuration",
		zap.String("nmcli", cfg.NmcliPath),
		zap.Duration("timeout", cfg.CommandTimeout),
		zap.String("interface", cfg.Interface),
	)

	runner := gonetworkmanager.NewExecRunner(cfg.NmcliPath, cfg.CommandTimeout, logging.Named("nmcli"))
	var opts []gonetworkmanager.Option
	if cfg.Interface != "" {
		opts = append(opts, gonetworkmanager.WithInterface(cfg.Interface))
	}
	client := gonetworkmanager.NewClient(runner, logging.Named("wifi"), opts...)

	if err := client.CheckAvailable(commandContext(cmd)); err != nil {
		logging.Warn("nmcli check failed", zap.Error(err))
		logging.Sync()
		var unavailable *gonetworkmanager.UnavailableError
		if errors.As(err, &unavailable) {
			return nil, cfg, fmt.Errorf("%w (this application requires NetworkManager)", err)
		}
		return nil, cfg, err
	}
	return client, cfg, nil
}

func runPanel(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if err := tui.Run(commandContext(cmd), client, tui.Options{
		MaxRows:       cfg.MaxRows,
		MaskPassword:  cfg.MaskPassword,
		ConfirmForget: cfg.ConfirmForget,
	}); err != nil {
		logging.Error("panel exited", zap.Error(err))
		return fmt.Errorf("running panel: %w", err)
	}
	return nil
}
