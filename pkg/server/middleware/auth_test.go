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

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mnemo/mnemo/pkg/assert"
	"github.com/mnemo/mnemo/pkg/server/context"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/testutils"
)

func TestAuth(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	session := testutils.SetupSession(db, user)

	var gotUser *database.User
	handler := Auth(db, func(w http.ResponseWriter, r *http.Request) {
		gotUser = context.User(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, rec.Code, http.StatusOK, "status mismatch")
	if gotUser == nil {
		t.Fatal("user should be set in the request context")
	}
	assert.Equal(t, gotUser.ID, user.ID, "user id mismatch")
}

func TestAuth_NoCredential(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	handler := Auth(db, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, rec.Code, http.StatusUnauthorized, "status mismatch")
}

func TestAuth_ExpiredSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	session := database.Session{
		Key:       "expired-session-key",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	testutils.MustExec(t, db.Save(&session), "preparing session")

	handler := Auth(db, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, rec.Code, http.StatusUnauthorized, "status mismatch")
}

func TestAuth_UnknownSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	handler := Auth(db, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer no-such-session")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, rec.Code, http.StatusUnauthorized, "status mismatch")
}
