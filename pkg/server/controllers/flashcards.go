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

// NewFlashcards creates a new Flashcards controller
func NewFlashcards(app *app.App) *Flashcards {
	return &Flashcards{
		app: app,
	}
}

// Flashcards is a flashcard controller
type Flashcards struct {
	app *app.App
}

// FlashcardForm is the form data for creating or updating a flashcard
type FlashcardForm struct {
	FrontText *string `schema:"front_text" json:"front_text"`
	BackText  *string `schema:"back_text" json:"back_text"`
	Status    *string `schema:"status" json:"status"`
}

// Index handles GET /flashcards
func (f *Flashcards) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := f.app.GetFlashcards(user.ID, app.GetFlashcardsParams{
		Status:  database.FlashcardStatus(query.Get("status")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		handleJSONError(w, err, "getting flashcards")
		return
	}

	respondFlashcardList(w, result.Total, result.Flashcards)
}

// Show handles GET /flashcards/{flashcardUUID}
func (f *Flashcards) Show(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	card, err := f.app.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		handleJSONError(w, err, "getting flashcard")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentFlashcard(card))
}

// Create handles POST /flashcards
func (f *Flashcards) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var form FlashcardForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	var front, back string
	if form.FrontText != nil {
		front = *form.FrontText
	}
	if form.BackText != nil {
		back = *form.BackText
	}

	card, err := f.app.CreateFlashcard(*user, front, back)
	if err != nil {
		handleJSONError(w, err, "creating flashcard")
		return
	}

	mw.RespondJSON(w, http.StatusCreated, presenters.PresentFlashcard(card))
}

// Update handles PATCH /flashcards/{flashcardUUID}
func (f *Flashcards) Update(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	var form FlashcardForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	params := app.UpdateFlashcardParams{
		FrontText: form.FrontText,
		BackText:  form.BackText,
	}
	if form.Status != nil {
		status := database.FlashcardStatus(*form.Status)
		params.Status = &status
	}

	card, err := f.app.UpdateFlashcard(*user, uuid, params)
	if err != nil {
		handleJSONError(w, err, "updating flashcard")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentFlashcard(card))
}

// Delete handles DELETE /flashcards/{flashcardUUID}
func (f *Flashcards) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	if err := f.app.DeleteFlashcard(*user, uuid); err != nil {
		handleJSONError(w, err, "deleting flashcard")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Approve handles POST /flashcards/{flashcardUUID}/approve
func (f *Flashcards) Approve(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	card, err := f.app.ApproveFlashcard(*user, uuid)
	if err != nil {
		handleJSONError(w, err, "approving flashcard")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentFlashcard(card))
}

// Reject handles POST /flashcards/{flashcardUUID}/reject
func (f *Flashcards) Reject(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	card, err := f.app.RejectFlashcard(*user, uuid)
	if err != nil {
		handleJSONError(w, err, "rejecting flashcard")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentFlashcard(card))
}

// BatchApproveForm is the form data for approving a batch of flashcards
type BatchApproveForm struct {
	UUIDs []string `schema:"uuids" json:"uuids"`
}

// BatchApprove handles POST /flashcards/approve
func (f *Flashcards) BatchApprove(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var form BatchApproveForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	result, err := f.app.BatchApprove(*user, form.UUIDs)
	if err != nil {
		handleJSONError(w, err, "approving flashcards")
		return
	}

	mw.RespondJSON(w, http.StatusOK, result)
}

// Due handles GET /flashcards/due
func (f *Flashcards) Due(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := f.app.GetDueFlashcards(user.ID, limit)
	if err != nil {
		handleJSONError(w, err, "getting due flashcards")
		return
	}

	respondFlashcardList(w, result.Total, result.Flashcards)
}

// ReviewForm is the form data for submitting a review
type ReviewForm struct {
	Quality *int `schema:"quality" json:"quality"`
}

// Review handles POST /flashcards/{flashcardUUID}/review
func (f *Flashcards) Review(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	vars := mux.Vars(r)
	uuid := vars["flashcardUUID"]

	var form ReviewForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	// a missing quality is out of range rather than a zero recall
	quality := -1
	if form.Quality != nil {
		quality = *form.Quality
	}

	card, err := f.app.SubmitReview(*user, uuid, quality)
	if err != nil {
		handleJSONError(w, err, "submitting review")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentFlashcard(card))
}

// flashcardListResp is the response for a list of flashcards
type flashcardListResp struct {
	Flashcards []presenters.Flashcard `json:"flashcards"`
	Total      int64                  `json:"total"`
}

func respondFlashcardList(w http.ResponseWriter, total int64, cards []database.Flashcard) {
	mw.RespondJSON(w, http.StatusOK, flashcardListResp{
		Flashcards: presenters.PresentFlashcards(cards),
		Total:      total,
	})
}
