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
	"crypto/rand"
	"encoding/base64"
	"time"

	pkgErrors "github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/database"
)

// sessionTTL is how long a session stays valid
const sessionTTL = 30 * 24 * time.Hour

func genSessionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", pkgErrors.Wrap(err, "reading random bits")
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// CreateSession creates a new session for the given user
func (a *App) CreateSession(userID int) (database.Session, error) {
	key, err := genSessionKey()
	if err != nil {
		return database.Session{}, err
	}

	now := a.Clock.Now()
	session := database.Session{
		UserID:     userID,
		Key:        key,
		LastUsedAt: now,
		ExpiresAt:  now.Add(sessionTTL),
	}
	if err := a.DB.Save(&session).Error; err != nil {
		return database.Session{}, PersistenceError{Op: "saving session", Err: err}
	}

	return session, nil
}

// DeleteSession removes the session with the given key
func (a *App) DeleteSession(key string) error {
	if err := a.DB.Where("key = ?", key).Delete(&database.Session{}).Error; err != nil {
		return PersistenceError{Op: "deleting session", Err: err}
	}

	return nil
}
