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

package app

import (
	"errors"

	pkgErrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/helpers"
	"github.com/mnemo/mnemo/pkg/server/log"
	"github.com/mnemo/mnemo/pkg/server/mailer"
)

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return pkgErrors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUser creates a user
func (a *App) CreateUser(email, password, passwordConfirmation string) (database.User, error) {
	if email == "" {
		return database.User{}, ErrEmailRequired
	}
	if len(password) < 8 {
		return database.User{}, ErrPasswordTooShort
	}
	if password != passwordConfirmation {
		return database.User{}, ErrPasswordConfirmationMismatch
	}

	var count int64
	if err := a.DB.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return database.User{}, PersistenceError{Op: "counting users", Err: err}
	}
	if count > 0 {
		return database.User{}, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, pkgErrors.Wrap(err, "hashing password")
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	tx := a.DB.Begin()

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		return database.User{}, PersistenceError{Op: "saving user", Err: err}
	}
	if err := a.TouchLastLoginAt(user, tx); err != nil {
		tx.Rollback()
		return database.User{}, PersistenceError{Op: "updating last login", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return database.User{}, PersistenceError{Op: "committing user", Err: err}
	}

	// welcome email is best-effort
	data := mailer.WelcomeTmplData{Email: email, WebURL: a.Config.WebURL}
	if err := a.EmailBackend.SendEmail(mailer.EmailTypeWelcome, "noreply@getmnemo.com", []string{email}, data); err != nil {
		log.WithFields(log.Fields{
			"user_id": user.ID,
		}).ErrorWrap(err, "sending welcome email")
	}

	return user, nil
}

// Authenticate validates the email and password combination
func (a *App) Authenticate(email, password string) (database.User, error) {
	var user database.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.User{}, ErrLoginInvalid
	}
	if err != nil {
		return database.User{}, PersistenceError{Op: "finding user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return database.User{}, ErrLoginInvalid
	}

	return user, nil
}

// UpdateUserPassword sets a new password for the given user
func (a *App) UpdateUserPassword(user database.User, password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pkgErrors.Wrap(err, "hashing password")
	}

	if err := a.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return PersistenceError{Op: "updating password", Err: err}
	}

	return nil
}

// RemoveUser deletes the user and all data owned by the user
func (a *App) RemoveUser(user database.User) error {
	tx := a.DB.Begin()

	if err := tx.Where("user_id = ?", user.ID).Delete(&database.Session{}).Error; err != nil {
		tx.Rollback()
		return PersistenceError{Op: "deleting sessions", Err: err}
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&database.Flashcard{}).Error; err != nil {
		tx.Rollback()
		return PersistenceError{Op: "deleting flashcards", Err: err}
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&database.GenerationRequest{}).Error; err != nil {
		tx.Rollback()
		return PersistenceError{Op: "deleting generation requests", Err: err}
	}
	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return PersistenceError{Op: "deleting user", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return PersistenceError{Op: "committing removal", Err: err}
	}

	return nil
}
