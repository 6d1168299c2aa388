// Package config handles input from etc/main.toml and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON overrides any setting with a JSON document, applied last.
const EnvConfigJSON = "STUPS_AUTH_CONFIG_JSON"

// envBindings maps config keys to the environment variables of existing deployments.
var envBindings = map[string]string{ //nolint:gochecknoglobals
	"tokens.url":      "STUPS_ACCESS_TOKEN_URL",
	"directory.url":   "STUPS_TEAM_SERVICE_URL",
	"directory.teams": "STUPS_TEAMS",
	"credentials.dir": "CREDENTIALS_DIR",
	"webserver.port":  "STUPS_AUTH_PORT",
	"log.loglevel":    "STUPS_AUTH_LOG_LEVEL",
}

// ReadConfig from config dir and environment.
// A missing main.toml is not an error, the environment alone can configure the adapter.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, errors.Wrapf(err, "failed to bind env %s", env)
		}
	}

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read main config file")
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	c.Directory.Teams = SplitTeams(c.Directory.Teams)

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "stups-auth-adapter")
	v.SetDefault("log.servicename", "stups-auth-adapter")
	v.SetDefault("log.console.enabled", true)

	v.SetDefault("webserver.port", 8080) //nolint:mnd
	v.SetDefault("webserver.shutdowntime", 5)
	v.SetDefault("webserver.checkaliveuri", "/checkalive")

	v.SetDefault("plugin.displayname", "STUPS")

	v.SetDefault("tokens.servicerealm", "/services")
	v.SetDefault("tokens.employeerealm", "/employees")
	v.SetDefault("tokens.scope", "uid")
	v.SetDefault("tokens.refreshratio", 0.5) //nolint:mnd
	v.SetDefault("tokens.startupattempts", 3)
	v.SetDefault("tokens.minrefreshinterval", 10*time.Second)
	v.SetDefault("tokens.maxbackoff", time.Minute)

	v.SetDefault("directory.concurrency", 1)

	v.SetDefault("http.connecttimeout", 5*time.Second)
	v.SetDefault("http.tlshandshaketimeout", 5*time.Second)
	v.SetDefault("http.readtimeout", 10*time.Second)
	v.SetDefault("http.requesttimeout", 15*time.Second)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read "+EnvConfigJSON)
	}

	return c, nil
}

// SplitTeams flattens comma separated entries, trims them and drops empty ones.
// STUPS_TEAMS arrives as one string, the toml file may carry a real list.
func SplitTeams(raw []string) []string {
	teams := make([]string, 0, len(raw))

	for _, entry := range raw {
		for _, team := range strings.Split(entry, ",") {
			if team = strings.TrimSpace(team); team != "" {
				teams = append(teams, team)
			}
		}
	}

	return teams
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings needed at startup.
// Directory and credentials settings are checked by the operation using them.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Tokens.URL == "" {
		return errors.Wrap(ErrTokenURLEmpty, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}
