// Package config loads the bot configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	ProviderJenkins = "jenkins"
	ProviderActions = "actions"
)

type Config struct {
	Provider   string           `mapstructure:"provider"`
	Jenkins    JenkinsConfig    `mapstructure:"jenkins"`
	Actions    ActionsConfig    `mapstructure:"actions"`
	Session    SessionConfig    `mapstructure:"session"`
	Server     ServerConfig     `mapstructure:"server"`
	Find       FindConfig       `mapstructure:"find"`
	Alias      AliasConfig      `mapstructure:"alias"`
	Admins     []string         `mapstructure:"admins"`
	RocketChat RocketChatConfig `mapstructure:"rocketchat"`
	Log        LogConfig        `mapstructure:"log"`
}

type JenkinsConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
}

type ActionsConfig struct {
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
	Ref   string `mapstructure:"ref"`
	Token string `mapstructure:"token"`
}

// SessionConfig selects where user settings are kept. An empty path keeps
// them in memory.
type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	Secret string `mapstructure:"secret"`
}

type FindConfig struct {
	MaxResults  int `mapstructure:"max_results"`
	Concurrency int `mapstructure:"concurrency"`
}

type AliasConfig struct {
	MaxCandidates int `mapstructure:"max_candidates"`
}

type RocketChatConfig struct {
	URL    string `mapstructure:"url"`
	UserID string `mapstructure:"user_id"`
	Token  string `mapstructure:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps keys to the environment variables earlier deployments used.
var legacyEnv = map[string]string{
	"jenkins.url":        "JENKINS_URL",
	"jenkins.username":   "JENKINS_USERNAME",
	"jenkins.token":      "JENKINS_TOKEN",
	"rocketchat.url":     "ROCKETCHAT_DOMAIN",
	"rocketchat.user_id": "ROCKETCHAT_USER_ID",
	"rocketchat.token":   "ROCKETCHAT_TOKEN",
	"actions.token":      "GH_TOKEN",
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderJenkins)
	v.SetDefault("jenkins.url", "")
	v.SetDefault("jenkins.username", "")
	v.SetDefault("jenkins.token", "")
	v.SetDefault("actions.owner", "")
	v.SetDefault("actions.repo", "")
	v.SetDefault("actions.ref", "main")
	v.SetDefault("actions.token", "")
	v.SetDefault("session.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.secret", "")
	v.SetDefault("find.max_results", 20)
	v.SetDefault("find.concurrency", 8)
	v.SetDefault("alias.max_candidates", 5)
	v.SetDefault("admins", []string{})
	v.SetDefault("rocketchat.url", "")
	v.SetDefault("rocketchat.user_id", "")
	v.SetDefault("rocketchat.token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the optional config file at path and the environment into a
// Config. Environment variables use the JENKINS_BOT_ prefix, e.g.
// JENKINS_BOT_SERVER_ADDR.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("JENKINS_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "JENKINS_BOT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderJenkins:
		if c.Jenkins.URL == "" {
			errs = append(errs, fmt.Errorf("jenkins.url is required (or set JENKINS_URL)"))
		}
	case ProviderActions:
		if c.Actions.Owner == "" || c.Actions.Repo == "" {
			errs = append(errs, fmt.Errorf("actions.owner and actions.repo are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderJenkins, ProviderActions))
	}
	if c.Find.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("find.max_results must be positive"))
	}
	if c.Find.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("find.concurrency must be positive"))
	}
	if c.Alias.MaxCandidates <= 0 {
		errs = append(errs, fmt.Errorf("alias.max_candidates must be positive"))
	}
	if c.RocketChat.URL != "" && (c.RocketChat.UserID == "" || c.RocketChat.Token == "") {
		errs = append(errs, fmt.Errorf("rocketchat.user_id and rocketchat.token are required with rocketchat.url"))
	}
	return errors.Join(errs...)
}

// ServerURL is the base URL of the configured CI server.
func (c Config) ServerURL() string {
	if c.Provider == ProviderActions {
		return fmt.Sprintf("https://github.com/%s/%s", c.Actions.Owner, c.Actions.Repo)
	}
	return strings.TrimSuffix(c.Jenkins.URL, "/")
}
