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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/assert"
	"github.com/mnemo/mnemo/pkg/dirs"
)

// setTestDirs points the XDG base directories at temporary locations so that
// files on the host do not leak into the test
func setTestDirs(t *testing.T) (string, string) {
	t.Helper()

	configHome := t.TempDir()
	dataHome := t.TempDir()

	// register before Setenv so the reload runs after the env is restored
	t.Cleanup(dirs.Reload)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_DATA_HOME", dataHome)
	dirs.Reload()

	clearConfigEnv(t)

	return configHome, dataHome
}

func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"APP_ENV", "PORT", "WebURL", "DBPath", "DATABASE_URL", "LOG_LEVEL",
		"DisableRegistration", "CSRF_AUTH_KEY", "GENERATION_LIMIT",
		"GENERATION_WINDOW_MINUTES", "REMINDER_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestNew_Defaults(t *testing.T) {
	_, dataHome := setTestDirs(t)

	c, err := New(Params{})
	if err != nil {
		t.Fatalf("creating config: %v", err)
	}

	assert.Equal(t, c.AppEnv, AppEnvProduction, "AppEnv mismatch")
	assert.Equal(t, c.Port, "3001", "Port mismatch")
	assert.Equal(t, c.WebURL, "http://localhost:3001", "WebURL mismatch")
	assert.Equal(t, c.DBPath, filepath.Join(dataHome, "mnemo", "server.db"), "DBPath mismatch")
	assert.Equal(t, c.LogLevel, "info", "LogLevel mismatch")
	assert.Equal(t, c.DisableRegistration, false, "DisableRegistration mismatch")
	assert.Equal(t, c.GenerationLimit, DefaultGenerationLimit, "GenerationLimit mismatch")
	assert.Equal(t, c.GenerationWindow, DefaultGenerationWindow, "GenerationWindow mismatch")
	assert.Equal(t, c.ReminderSchedule, "@daily", "ReminderSchedule mismatch")
	assert.Equal(t, c.IsProd(), true, "IsProd mismatch")
}

func TestNew_Env(t *testing.T) {
	setTestDirs(t)

	t.Setenv("APP_ENV", "TEST")
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GENERATION_LIMIT", "5")
	t.Setenv("GENERATION_WINDOW_MINUTES", "30")
	t.Setenv("REMINDER_SCHEDULE", "@hourly")
	t.Setenv("CSRF_AUTH_KEY", "0123456789abcdef0123456789abcdef")

	c, err := New(Params{})
	if err != nil {
		t.Fatalf("creating config: %v", err)
	}

	assert.Equal(t, c.AppEnv, "TEST", "AppEnv mismatch")
	assert.Equal(t, c.Port, "4000", "Port mismatch")
	assert.Equal(t, c.LogLevel, "debug", "LogLevel mismatch")
	assert.Equal(t, c.GenerationLimit, 5, "GenerationLimit mismatch")
	assert.Equal(t, c.GenerationWindow, 30*time.Minute, "GenerationWindow mismatch")
	assert.Equal(t, c.ReminderSchedule, "@hourly", "ReminderSchedule mismatch")
	assert.Equal(t, c.CSRFAuthKey, "0123456789abcdef0123456789abcdef", "CSRFAuthKey mismatch")
	assert.Equal(t, c.IsProd(), false, "IsProd mismatch")
}

func TestNew_ConfigFile(t *testing.T) {
	setTestDirs(t)

	content := []byte(`port: "5000"
web_url: http://mnemo.example.com
log_level: warn
generation_limit: 3
generation_window_minutes: 15
`)
	path := filepath.Join(t.TempDir(), "server.yml")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	// explicit params take precedence over the file
	c, err := New(Params{Port: "4000", ConfigFile: path})
	if err != nil {
		t.Fatalf("creating config: %v", err)
	}

	assert.Equal(t, c.Port, "4000", "Port mismatch")
	assert.Equal(t, c.WebURL, "http://mnemo.example.com", "WebURL mismatch")
	assert.Equal(t, c.LogLevel, "warn", "LogLevel mismatch")
	assert.Equal(t, c.GenerationLimit, 3, "GenerationLimit mismatch")
	assert.Equal(t, c.GenerationWindow, 15*time.Minute, "GenerationWindow mismatch")
}

func TestNew_DefaultConfigFile(t *testing.T) {
	configHome, _ := setTestDirs(t)

	dir := filepath.Join(configHome, "mnemo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating config dir: %v", err)
	}
	content := []byte("port: \"5000\"\n")
	if err := os.WriteFile(filepath.Join(dir, "server.yml"), content, 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	c, err := New(Params{})
	if err != nil {
		t.Fatalf("creating config: %v", err)
	}

	assert.Equal(t, c.Port, "5000", "Port mismatch")
}

func TestNew_ConfigFileMissing(t *testing.T) {
	setTestDirs(t)

	_, err := New(Params{ConfigFile: "/nonexistent/server.yml"})
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestNew_Invalid(t *testing.T) {
	setTestDirs(t)

	testCases := []struct {
		name     string
		params   Params
		expected error
	}{
		{
			name:     "invalid web url",
			params:   Params{WebURL: "not a url"},
			expected: ErrWebURLInvalid,
		},
		{
			name:     "negative generation limit",
			params:   Params{GenerationLimit: -1},
			expected: ErrGenerationLimitInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.params)

			assert.Equal(t, errors.Cause(err), tc.expected, "error mismatch")
		})
	}
}
