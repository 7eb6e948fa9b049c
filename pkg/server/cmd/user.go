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

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mnemo/mnemo/pkg/prompt"
	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/config"
	"github.com/mnemo/mnemo/pkg/server/database"
)

var (
	successMark = color.New(color.FgGreen).Sprint("✔")
	failureMark = color.New(color.FgRed).Sprint("✘")
)

func success(msg string, v ...interface{}) {
	fmt.Fprintf(color.Output, "%s %s\n", successMark, fmt.Sprintf(msg, v...))
}

func failure(msg string, v ...interface{}) {
	fmt.Fprintf(color.Output, "%s %s\n", failureMark, fmt.Sprintf(msg, v...))
}

// setupApp loads the config with the given database parameters and
// initializes an app around them
func setupApp(dbPath, databaseURL string) (app.App, error) {
	cfg, err := config.New(config.Params{
		DBPath:      dbPath,
		DatabaseURL: databaseURL,
	})
	if err != nil {
		return app.App{}, errors.Wrap(err, "loading config")
	}

	return initApp(cfg), nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserResetPasswordCmd())
	cmd.AddCommand(newUserRemoveCmd())

	return cmd
}

func findUserByEmail(a *app.App, email string) (database.User, error) {
	var user database.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		failure("user with email %s not found", email)
		return user, err
	}
	if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	return user, nil
}

func newUserCreateCmd() *cobra.Command {
	var email, password, dbPath, databaseURL string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(dbPath, databaseURL)
			if err != nil {
				return err
			}
			defer closeDB(&a)

			if _, err := a.CreateUser(email, password, password); err != nil {
				failure("creating user: %s", err)
				return err
			}

			success("user created: %s", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "User password (required)")
	cmd.Flags().StringVar(&dbPath, "dbPath", "", "Path to SQLite database file")
	cmd.Flags().StringVar(&databaseURL, "databaseUrl", "", "PostgreSQL connection string")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newUserResetPasswordCmd() *cobra.Command {
	var email, password, dbPath, databaseURL string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(dbPath, databaseURL)
			if err != nil {
				return err
			}
			defer closeDB(&a)

			user, err := findUserByEmail(&a, email)
			if err != nil {
				return err
			}

			if err := a.UpdateUserPassword(user, password); err != nil {
				failure("updating password: %s", err)
				return err
			}

			success("password reset: %s", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	cmd.Flags().StringVar(&dbPath, "dbPath", "", "Path to SQLite database file")
	cmd.Flags().StringVar(&databaseURL, "databaseUrl", "", "PostgreSQL connection string")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newUserRemoveCmd() *cobra.Command {
	var email, dbPath, databaseURL string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a user and all data owned by the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(dbPath, databaseURL)
			if err != nil {
				return err
			}
			defer closeDB(&a)

			user, err := findUserByEmail(&a, email)
			if err != nil {
				return err
			}

			if !yes {
				question := fmt.Sprintf("remove %s and all of their flashcards?", email)
				confirmed, err := prompt.Confirm(question, false)
				if err != nil {
					return errors.Wrap(err, "reading confirmation")
				}
				if !confirmed {
					failure("aborted")
					return nil
				}
			}

			if err := a.RemoveUser(user); err != nil {
				failure("removing user: %s", err)
				return err
			}

			success("user removed: %s", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email address (required)")
	cmd.Flags().StringVar(&dbPath, "dbPath", "", "Path to SQLite database file")
	cmd.Flags().StringVar(&databaseURL, "databaseUrl", "", "PostgreSQL connection string")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.MarkFlagRequired("email")

	return cmd
}
