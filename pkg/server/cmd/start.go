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

package cmd

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mnemo/mnemo/pkg/server/buildinfo"
	"github.com/mnemo/mnemo/pkg/server/config"
	"github.com/mnemo/mnemo/pkg/server/controllers"
	"github.com/mnemo/mnemo/pkg/server/job"
	"github.com/mnemo/mnemo/pkg/server/log"
)

func newStartCmd() *cobra.Command {
	var (
		port                string
		webURL              string
		dbPath              string
		databaseURL         string
		disableRegistration bool
		logLevel            string
		generationLimit     int
		configFile          string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(config.Params{
				Port:                port,
				WebURL:              webURL,
				DBPath:              dbPath,
				DatabaseURL:         databaseURL,
				DisableRegistration: disableRegistration,
				LogLevel:            logLevel,
				GenerationLimit:     generationLimit,
				ConfigFile:          configFile,
			})
			if err != nil {
				return errors.Wrap(err, "loading config")
			}

			return startServer(cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Server port (env: PORT, default: 3001)")
	cmd.Flags().StringVar(&webURL, "webUrl", "", "Full URL to server without trailing slash (env: WebURL, default: http://localhost:3001)")
	cmd.Flags().StringVar(&dbPath, "dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/mnemo/server.db)")
	cmd.Flags().StringVar(&databaseURL, "databaseUrl", "", "PostgreSQL connection string, takes precedence over dbPath (env: DATABASE_URL)")
	cmd.Flags().BoolVar(&disableRegistration, "disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	cmd.Flags().StringVar(&logLevel, "logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	cmd.Flags().IntVar(&generationLimit, "generationLimit", 0, "Per-user AI generation requests per window (env: GENERATION_LIMIT, default: 10)")
	cmd.Flags().StringVar(&configFile, "configFile", "", "Path to a YAML config file (default: $XDG_CONFIG_HOME/mnemo/server.yml)")

	return cmd
}

func startServer(cfg config.Config) error {
	log.SetLevel(cfg.LogLevel)

	a := initApp(cfg)
	defer closeDB(&a)

	runner := job.NewRunner(&a)
	if err := runner.Do(); err != nil {
		return errors.Wrap(err, "starting background jobs")
	}
	defer runner.Stop()

	ctl := controllers.New(&a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(&a, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&a, rc)
	if err != nil {
		return errors.Wrap(err, "initializing router")
	}

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
	}).Info("Mnemo server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		return errors.Wrap(err, "running server")
	}

	return nil
}
