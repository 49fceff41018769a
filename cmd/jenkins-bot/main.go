package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/altinukshini/jenkins-bot/internal/config"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

type globalFlags struct {
	configPath string
	user       string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "jenkins-bot",
		Short:        "Chat bot for finding and triggering CI jobs",
		Long:         "jenkins-bot answers chat commands that search Jenkins jobs, trigger builds and keep per-user build history.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (yaml, toml or json)")
	root.PersistentFlags().StringVarP(&flags.user, "user", "u", os.Getenv("USER"), "chat user to act as")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(flags),
		newConsoleCmd(flags),
		newFindCmd(flags),
		newBuildCmd(flags),
		newHistoryCmd(flags),
		newClearCmd(flags),
		newAliasCmd(flags),
		newTokenCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "jenkins-bot", version)
			},
		},
	)
	return root
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load(viper.New(), flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
