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
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/context"
	"github.com/mnemo/mnemo/pkg/server/database"
	mw "github.com/mnemo/mnemo/pkg/server/middleware"
	"github.com/mnemo/mnemo/pkg/server/presenters"
)

// NewGeneration creates a new Generation controller
func NewGeneration(app *app.App) *Generation {
	return &Generation{
		app: app,
	}
}

// Generation is a controller for AI flashcard generation
type Generation struct {
	app *app.App
}

// GenerationForm is the form data for requesting flashcard generation
type GenerationForm struct {
	SourceText string `schema:"source_text" json:"source_text"`
}

// setRateLimitHeaders reports the caller's generation quota on the response
func (g *Generation) setRateLimitHeaders(w http.ResponseWriter, user *database.User) {
	limiter := g.app.GenerationLimiter

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(user.UUID, app.GenerationResource)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limiter.ResetAt(user.UUID, app.GenerationResource).Unix(), 10))
}

// Create handles POST /generations. The rate limit is checked before any
// provider call so that a throttled user costs nothing.
func (g *Generation) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	if g.app.DraftSource == nil {
		mw.DoError(w, "generation is not configured", nil, http.StatusServiceUnavailable)
		return
	}

	var form GenerationForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := g.app.GenerationLimiter.Check(user.UUID, app.GenerationResource); err != nil {
		g.setRateLimitHeaders(w, user)
		handleJSONError(w, err, "checking rate limit")
		return
	}

	drafts, err := g.app.DraftSource.GenerateDrafts(r.Context(), form.SourceText)
	if err != nil {
		mw.DoError(w, "generating drafts", err, http.StatusBadGateway)
		return
	}

	request, cards, err := g.app.CreateGenerationRequest(*user, form.SourceText, drafts)
	if err != nil {
		handleJSONError(w, err, "creating generation request")
		return
	}

	g.setRateLimitHeaders(w, user)
	mw.RespondJSON(w, http.StatusCreated, presenters.PresentGenerationRequest(request, cards))
}

// Show handles GET /generations/{generationUUID}
func (g *Generation) Show(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["generationUUID"]

	request, err := g.app.GetUserGenerationRequestByUUID(user.ID, uuid)
	if err != nil {
		handleJSONError(w, err, "getting generation request")
		return
	}

	cards, err := g.app.GetGenerationRequestFlashcards(user.ID, request.UUID)
	if err != nil {
		handleJSONError(w, err, "getting generated flashcards")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentGenerationRequest(request, cards))
}

// Delete handles DELETE /generations/{generationUUID}
func (g *Generation) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["generationUUID"]

	if err := g.app.DeleteGenerationRequest(*user, uuid); err != nil {
		handleJSONError(w, err, "deleting generation request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
