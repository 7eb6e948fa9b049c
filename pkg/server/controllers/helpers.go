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

package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/database"
	mw "github.com/mnemo/mnemo/pkg/server/middleware"
	"github.com/mnemo/mnemo/pkg/server/ratelimit"
	"github.com/mnemo/mnemo/pkg/server/sm2"
)

var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
}

// parseForm parses the form data of the request into the destination
func parseForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "parsing form")
	}

	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// parseRequestData parses the request payload into the destination. JSON
// bodies and form submissions are both accepted.
func parseRequestData(r *http.Request, dst interface{}) error {
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.Wrap(err, "decoding json")
		}

		return nil
	}

	return parseForm(r, dst)
}

// validationErrs is the set of app errors caused by a bad request payload
var validationErrs = map[error]bool{
	app.ErrEmailRequired:                true,
	app.ErrPasswordTooShort:             true,
	app.ErrPasswordConfirmationMismatch: true,
	app.ErrDuplicateEmail:               true,
	app.ErrFrontTextRequired:            true,
	app.ErrBackTextRequired:             true,
	app.ErrFrontTextTooLong:             true,
	app.ErrBackTextTooLong:              true,
	app.ErrSourceTextRequired:           true,
	app.ErrSourceTextTooLong:            true,
	app.ErrDraftsRequired:               true,
	app.ErrBatchEmpty:                   true,
	app.ErrBatchTooLarge:                true,
	app.ErrInvalidStatus:                true,
	sm2.ErrQualityOutOfRange:            true,
}

// statusCodeForErr maps an application error to an HTTP status code
func statusCodeForErr(err error) int {
	cause := errors.Cause(err)

	if validationErrs[cause] {
		return http.StatusBadRequest
	}
	if cause == app.ErrLoginInvalid {
		return http.StatusUnauthorized
	}
	if _, ok := cause.(app.NotFoundError); ok {
		return http.StatusNotFound
	}
	if _, ok := cause.(app.InvalidStateError); ok {
		return http.StatusConflict
	}
	if _, ok := cause.(ratelimit.Error); ok {
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

// errResp is the body of an error response
type errResp struct {
	Message string `json:"message"`
}

// handleJSONError responds to the request with the appropriate status code
// for the given error. Client errors carry the error message in the body;
// server errors are logged and the message is not exposed.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := statusCodeForErr(err)

	if statusCode >= 500 {
		mw.DoError(w, msg, err, statusCode)
		return
	}

	mw.RespondJSON(w, statusCode, errResp{Message: errors.Cause(err).Error()})
}

// sessionResp is the response for a newly authenticated session
type sessionResp struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func respondWithSession(w http.ResponseWriter, statusCode int, session database.Session) {
	mw.RespondJSON(w, statusCode, sessionResp{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt,
	})
}

func setSessionCookie(w http.ResponseWriter, key string, expires time.Time) {
	cookie := http.Cookie{
		Name:     "id",
		Value:    key,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
	}

	http.SetCookie(w, &cookie)
}

func unsetSessionCookie(w http.ResponseWriter) {
	cookie := http.Cookie{
		Name:     "id",
		Value:    "",
		Expires:  time.Now(),
		Path:     "/",
		HttpOnly: true,
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.SetCookie(w, &cookie)
}
