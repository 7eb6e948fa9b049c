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
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/app"
	mw "github.com/mnemo/mnemo/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	ret := []Route{
		{"POST", "/v3/signin", c.Users.Login, true},
		{"POST", "/v3/signout", c.Users.Logout, true},

		{"GET", "/v3/flashcards", mw.Auth(a.DB, c.Flashcards.Index), true},
		{"POST", "/v3/flashcards", mw.Auth(a.DB, c.Flashcards.Create), true},
		{"GET", "/v3/flashcards/due", mw.Auth(a.DB, c.Flashcards.Due), true},
		{"POST", "/v3/flashcards/approve", mw.Auth(a.DB, c.Flashcards.BatchApprove), true},
		{"GET", "/v3/flashcards/{flashcardUUID}", mw.Auth(a.DB, c.Flashcards.Show), true},
		{"PATCH", "/v3/flashcards/{flashcardUUID}", mw.Auth(a.DB, c.Flashcards.Update), true},
		{"DELETE", "/v3/flashcards/{flashcardUUID}", mw.Auth(a.DB, c.Flashcards.Delete), true},
		{"POST", "/v3/flashcards/{flashcardUUID}/approve", mw.Auth(a.DB, c.Flashcards.Approve), true},
		{"POST", "/v3/flashcards/{flashcardUUID}/reject", mw.Auth(a.DB, c.Flashcards.Reject), true},
		{"POST", "/v3/flashcards/{flashcardUUID}/review", mw.Auth(a.DB, c.Flashcards.Review), true},

		{"POST", "/v3/generations", mw.Auth(a.DB, c.Generation.Create), true},
		{"GET", "/v3/generations/{generationUUID}", mw.Auth(a.DB, c.Generation.Show), true},
		{"DELETE", "/v3/generations/{generationUUID}", mw.Auth(a.DB, c.Generation.Delete), true},

		{"GET", "/v3/health", c.Health.Index, true},
	}

	if !a.Config.DisableRegistration {
		ret = append(ret, Route{"POST", "/v3/register", c.Users.Register, true})
	}

	return ret
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// skipCSRFForTokenAuth exempts requests authenticated with a bearer token
// from the CSRF check. Cookieless API clients cannot be victims of CSRF.
func skipCSRFForTokenAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			r = csrf.UnsafeSkipCheck(r)
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()

	rl := mw.NewRateLimiter()
	registerRoutes(apiRouter, mw.NewAPIMw(rl), app, rc.APIRoutes)

	router.PathPrefix("/api/v1").Handler(http.HandlerFunc(mw.NotSupported))
	router.PathPrefix("/api/v2").Handler(http.HandlerFunc(mw.NotSupported))

	router.HandleFunc("/health", rc.Controllers.Health.Index)

	var ret http.Handler = mw.Global(router)

	if key := app.Config.CSRFAuthKey; key != "" {
		protect := csrf.Protect(
			[]byte(key),
			csrf.Secure(app.Config.IsProd()),
			csrf.Path("/"),
		)
		ret = skipCSRFForTokenAuth(protect(ret))
	}

	return ret, nil
}
