/* Copyright 2025 Mnemo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config provides the server configuration
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mnemo/mnemo/pkg/dirs"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBDir is the default directory name for Mnemo data
	DefaultDBDir = "mnemo"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"

	// DefaultGenerationLimit is the per-user request budget for the AI
	// generation endpoint within one window
	DefaultGenerationLimit = 10
	// DefaultGenerationWindow is the length of one generation rate-limit window
	DefaultGenerationWindow = time.Hour
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrWebURLInvalid is an error for an incomplete configuration with invalid web url
	ErrWebURLInvalid = errors.New("Invalid WebURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrGenerationLimitInvalid is an error for a non-positive generation rate limit
	ErrGenerationLimitInvalid = errors.New("Invalid GenerationLimit")
)

// defaultDBPath returns the database location under the XDG data home
func defaultDBPath() string {
	return filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
}

// DefaultConfigFile returns the location checked for a configuration file
// when none is given explicitly.
func DefaultConfigFile() string {
	return filepath.Join(dirs.ConfigHome, DefaultDBDir, "server.yml")
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	WebURL              string
	Port                string
	DBPath              string
	DatabaseURL         string
	LogLevel            string
	DisableRegistration bool
	CSRFAuthKey         string
	GenerationLimit     int
	GenerationWindow    time.Duration
	ReminderSchedule    string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	WebURL              string
	DBPath              string
	DatabaseURL         string
	LogLevel            string
	DisableRegistration bool
	ConfigFile          string
	GenerationLimit     int
	GenerationWindow    time.Duration
	ReminderSchedule    string
}

// fileParams is the shape of an optional YAML configuration file. Values
// from the file fill in params left empty by flags.
type fileParams struct {
	AppEnv              string `yaml:"app_env"`
	Port                string `yaml:"port"`
	WebURL              string `yaml:"web_url"`
	DBPath              string `yaml:"db_path"`
	DatabaseURL         string `yaml:"database_url"`
	LogLevel            string `yaml:"log_level"`
	DisableRegistration bool   `yaml:"disable_registration"`
	GenerationLimit     int    `yaml:"generation_limit"`
	GenerationWindowMin int    `yaml:"generation_window_minutes"`
	ReminderSchedule    string `yaml:"reminder_schedule"`
}

func applyFile(p Params) (Params, error) {
	if p.ConfigFile == "" {
		candidate := DefaultConfigFile()
		if _, err := os.Stat(candidate); err != nil {
			return p, nil
		}

		p.ConfigFile = candidate
	}

	content, err := os.ReadFile(p.ConfigFile)
	if err != nil {
		return p, errors.Wrap(err, "reading config file")
	}

	var fp fileParams
	if err := yaml.Unmarshal(content, &fp); err != nil {
		return p, errors.Wrap(err, "parsing config file")
	}

	if p.AppEnv == "" {
		p.AppEnv = fp.AppEnv
	}
	if p.Port == "" {
		p.Port = fp.Port
	}
	if p.WebURL == "" {
		p.WebURL = fp.WebURL
	}
	if p.DBPath == "" {
		p.DBPath = fp.DBPath
	}
	if p.DatabaseURL == "" {
		p.DatabaseURL = fp.DatabaseURL
	}
	if p.LogLevel == "" {
		p.LogLevel = fp.LogLevel
	}
	if !p.DisableRegistration {
		p.DisableRegistration = fp.DisableRegistration
	}
	if p.GenerationLimit == 0 {
		p.GenerationLimit = fp.GenerationLimit
	}
	if p.GenerationWindow == 0 && fp.GenerationWindowMin > 0 {
		p.GenerationWindow = time.Duration(fp.GenerationWindowMin) * time.Minute
	}
	if p.ReminderSchedule == "" {
		p.ReminderSchedule = fp.ReminderSchedule
	}

	return p, nil
}

func readIntEnv(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}

	return n
}

// New constructs and returns a new validated config.
// Empty params fall back to the config file, environment variables, and
// finally defaults.
func New(p Params) (Config, error) {
	p, err := applyFile(p)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		AppEnv:              getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:                getOrEnv(p.Port, "PORT", "3001"),
		WebURL:              getOrEnv(p.WebURL, "WebURL", "http://localhost:3001"),
		DBPath:              getOrEnv(p.DBPath, "DBPath", defaultDBPath()),
		DatabaseURL:         getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		LogLevel:            getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		DisableRegistration: p.DisableRegistration || readBoolEnv("DisableRegistration"),
		CSRFAuthKey:         os.Getenv("CSRF_AUTH_KEY"),
		GenerationLimit:     p.GenerationLimit,
		GenerationWindow:    p.GenerationWindow,
		ReminderSchedule:    getOrEnv(p.ReminderSchedule, "REMINDER_SCHEDULE", "@daily"),
	}

	if c.GenerationLimit == 0 {
		if n := readIntEnv("GENERATION_LIMIT"); n > 0 {
			c.GenerationLimit = n
		} else {
			c.GenerationLimit = DefaultGenerationLimit
		}
	}
	if c.GenerationWindow == 0 {
		if n := readIntEnv("GENERATION_WINDOW_MINUTES"); n > 0 {
			c.GenerationWindow = time.Duration(n) * time.Minute
		} else {
			c.GenerationWindow = DefaultGenerationWindow
		}
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.WebURL); err != nil {
		return errors.Wrapf(ErrWebURLInvalid, "'%s'", c.WebURL)
	}
	if c.Port == "" {
		return ErrPortInvalid
	}
	if c.DBPath == "" && c.DatabaseURL == "" {
		return ErrDBMissingPath
	}
	if c.GenerationLimit <= 0 {
		return ErrGenerationLimitInvalid
	}

	return nil
}
