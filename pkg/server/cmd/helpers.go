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
	"os"

	"gorm.io/gorm"

	"github.com/mnemo/mnemo/pkg/clock"
	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/config"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/generation"
	"github.com/mnemo/mnemo/pkg/server/log"
	"github.com/mnemo/mnemo/pkg/server/mailer"
	"github.com/mnemo/mnemo/pkg/server/ratelimit"
)

// initDB opens the configured database and brings the schema up to date.
// A DATABASE_URL takes precedence over the SQLite path.
func initDB(cfg config.Config) *gorm.DB {
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db = database.OpenPostgres(cfg.DatabaseURL)
	} else {
		db = database.Open(cfg.DBPath)
	}

	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	return db
}

func getEmailBackend() mailer.Backend {
	defaultBackend, err := mailer.NewDefaultBackend()
	if err != nil {
		log.Debug("SMTP not configured, writing emails to the log")
		return &mailer.LogBackend{}
	}

	log.Debug("Email backend configured")
	return defaultBackend
}

// getDraftSource builds the AI draft source from the environment. It
// returns nil when no provider is configured, which disables generation.
func getDraftSource() generation.DraftSource {
	apiKey := os.Getenv("GENERATION_API_KEY")
	if apiKey == "" {
		log.Debug("Generation provider not configured, generation is disabled")
		return nil
	}

	baseURL := os.Getenv("GENERATION_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("GENERATION_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return generation.NewClient(baseURL, apiKey, model)
}

func initApp(cfg config.Config) app.App {
	db := initDB(cfg)
	c := clock.New()

	return app.App{
		DB:                db,
		Clock:             c,
		Config:            cfg,
		EmailBackend:      getEmailBackend(),
		GenerationLimiter: ratelimit.NewLimiter(ratelimit.NewMemoryStore(), c, cfg.GenerationLimit, cfg.GenerationWindow),
		DraftSource:       getDraftSource(),
	}
}

// closeDB releases the underlying database connection
func closeDB(a *app.App) {
	sqlDB, err := a.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}
