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

package database

import (
	"embed"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"

	"github.com/mnemo/mnemo/pkg/server/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the pending incremental migrations. Schema creation itself
// is handled by InitSchema; the migration files cover index and data changes
// that AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting sql.DB")
	}

	source := migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	migrate.SetTable(MigrationTableName)

	dialect, err := migrationDialect(db)
	if err != nil {
		return err
	}

	n, err := migrate.Exec(sqlDB, dialect, source, migrate.Up)
	if err != nil {
		return errors.Wrap(err, "applying migrations")
	}

	if n > 0 {
		log.WithFields(log.Fields{
			"count": n,
		}).Info("applied migrations")
	}

	return nil
}

func migrationDialect(db *gorm.DB) (string, error) {
	switch name := db.Dialector.Name(); name {
	case "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", errors.Errorf("unsupported dialect %s", name)
	}
}
