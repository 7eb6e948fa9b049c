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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/log"
)

// Middleware is a function that wraps a handler with a behavior
type Middleware func(h http.HandlerFunc, app *app.App, rateLimit bool) http.Handler

// NewAPIMw returns a middleware for the API routes. It rate limits the
// handler per client IP when the route opts in and the app is not under
// test.
func NewAPIMw(rl *RateLimiter) Middleware {
	return func(h http.HandlerFunc, a *app.App, rateLimit bool) http.Handler {
		var ret http.Handler = h

		if rateLimit && a.Config.AppEnv != "TEST" {
			ret = rl.Limit(ret)
		}

		return ret
	}
}

// statusWriter captures the status code written to the response
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Global wraps the router with the behaviors that apply to every route
func Global(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := statusWriter{ResponseWriter: w, status: http.StatusOK}
		t0 := time.Now()

		h.ServeHTTP(&sw, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(t0).String(),
		}).Info("request")
	})
}

// NotSupported is the handler for the routes that are no longer supported
func NotSupported(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "API version is not supported. Please upgrade your client.", http.StatusGone)
}

// getSessionKeyFromCookie reads and returns a session key from the cookie
// sent by the request. It returns an empty string if the request does not
// have the session cookie.
func getSessionKeyFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie("id")

	if err == http.ErrNoCookie {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "reading cookie")
	}

	return c.Value, nil
}

// getSessionKeyFromAuth reads and returns a session key from the
// Authorization header
func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	payload := strings.SplitN(h, " ", 2)
	if len(payload) != 2 || payload[0] != "Bearer" {
		return "", errors.New("invalid authorization header")
	}

	return payload[1], nil
}

// GetCredential extracts a session key from the request. The Authorization
// header takes precedence over the session cookie.
func GetCredential(r *http.Request) (string, error) {
	ret, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from the authorization header")
	}
	if ret != "" {
		return ret, nil
	}

	ret, err = getSessionKeyFromCookie(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from the cookie")
	}

	return ret, nil
}

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	var message string
	if err == nil {
		message = msg
	} else {
		message = fmt.Sprintf("%s: %s", msg, err.Error())
	}

	log.WithFields(log.Fields{
		"statusCode": statusCode,
	}).Error(message)

	http.Error(w, http.StatusText(statusCode), statusCode)
}

// RespondJSON encodes the given payload into JSON and writes it to the response
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		DoError(w, "encoding response", err, http.StatusInternalServerError)
	}
}

// RespondUnauthorized responds with 401
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="Access to the API"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
