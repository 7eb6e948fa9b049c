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
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/assert"
	"github.com/mnemo/mnemo/pkg/clock"
	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/generation"
	"github.com/mnemo/mnemo/pkg/server/presenters"
	"github.com/mnemo/mnemo/pkg/server/ratelimit"
	"github.com/mnemo/mnemo/pkg/server/testutils"
)

// stubDraftSource returns a fixed set of drafts
type stubDraftSource struct {
	drafts []generation.Draft
	err    error
}

func (s *stubDraftSource) GenerateDrafts(ctx context.Context, sourceText string) ([]generation.Draft, error) {
	return s.drafts, s.err
}

func TestCreateGenerationAPI(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	a.DraftSource = &stubDraftSource{
		drafts: []generation.Draft{
			{Front: "What is Go?", Back: "A programming language"},
			{Front: "What is a goroutine?", Back: "A lightweight thread"},
		},
	}
	server := MustNewServer(t, &a)
	defer server.Close()

	user := testutils.SetupUserData(db, "alice@test.com", "pass1234")

	req := testutils.MakeReq(server.URL, "POST", "/api/v3/generations", `{"source_text": "Go is a language designed at Google."}`)
	res := testutils.HTTPAuthDo(t, db, req, user)

	assert.StatusCodeEquals(t, res, http.StatusCreated, "")
	assert.Equal(t, res.Header.Get("X-RateLimit-Remaining"), "9", "remaining header mismatch")

	var payload presenters.GenerationRequest
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(errors.Wrap(err, "decoding payload"))
	}

	assert.Equal(t, payload.SourceText, "Go is a language designed at Google.", "source text mismatch")
	assert.Equal(t, len(payload.Flashcards), 2, "flashcard count mismatch")

	for _, card := range payload.Flashcards {
		assert.Equal(t, card.Source, "ai_generated", "source mismatch")
		assert.Equal(t, card.Status, "pending_review", "status mismatch")
		if card.NextReviewAt != nil {
			t.Errorf("pending card %s should not be scheduled", card.UUID)
		}
	}

	var cardCount int64
	testutils.MustExec(t, db.Model(&database.Flashcard{}).Count(&cardCount), "counting flashcards")
	assert.Equal(t, cardCount, int64(2), "stored card count mismatch")
}

func TestCreateGenerationAPI_RateLimited(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	a.DraftSource = &stubDraftSource{
		drafts: []generation.Draft{{Front: "f", Back: "b"}},
	}

	// a quota of one makes the second request throttled
	c := clock.NewMock()
	c.SetNow(time.Now())
	a.Clock = c
	a.GenerationLimiter = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), c, 1, time.Hour)

	server := MustNewServer(t, &a)
	defer server.Close()

	user := testutils.SetupUserData(db, "alice@test.com", "pass1234")

	req := testutils.MakeReq(server.URL, "POST", "/api/v3/generations", `{"source_text": "some source"}`)
	res := testutils.HTTPAuthDo(t, db, req, user)
	assert.StatusCodeEquals(t, res, http.StatusCreated, "")

	req = testutils.MakeReq(server.URL, "POST", "/api/v3/generations", `{"source_text": "some source"}`)
	res = testutils.HTTPAuthDo(t, db, req, user)

	assert.StatusCodeEquals(t, res, http.StatusTooManyRequests, "")
	assert.Equal(t, res.Header.Get("X-RateLimit-Remaining"), "0", "remaining header mismatch")
	if res.Header.Get("X-RateLimit-Reset") == "" {
		t.Fatal("reset header should be set")
	}

	// the throttled request must not create anything
	var requestCount int64
	testutils.MustExec(t, db.Model(&database.GenerationRequest{}).Count(&requestCount), "counting requests")
	assert.Equal(t, requestCount, int64(1), "request count mismatch")
}

func TestCreateGenerationAPI_NotConfigured(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	user := testutils.SetupUserData(db, "alice@test.com", "pass1234")

	req := testutils.MakeReq(server.URL, "POST", "/api/v3/generations", `{"source_text": "some source"}`)
	res := testutils.HTTPAuthDo(t, db, req, user)

	assert.StatusCodeEquals(t, res, http.StatusServiceUnavailable, "")
}

func TestShowGenerationAPI(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	a.DraftSource = &stubDraftSource{
		drafts: []generation.Draft{{Front: "f", Back: "b"}},
	}
	server := MustNewServer(t, &a)
	defer server.Close()

	user := testutils.SetupUserData(db, "alice@test.com", "pass1234")
	anotherUser := testutils.SetupUserData(db, "bob@test.com", "pass1234")

	request, _, err := a.CreateGenerationRequest(user, "some source", []generation.Draft{{Front: "f", Back: "b"}})
	if err != nil {
		t.Fatal(errors.Wrap(err, "preparing generation request"))
	}

	req := testutils.MakeReq(server.URL, "GET", "/api/v3/generations/"+request.UUID, "")
	res := testutils.HTTPAuthDo(t, db, req, user)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload presenters.GenerationRequest
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(errors.Wrap(err, "decoding payload"))
	}
	assert.Equal(t, payload.UUID, request.UUID, "uuid mismatch")
	assert.Equal(t, len(payload.Flashcards), 1, "flashcard count mismatch")

	// the request is invisible to other users
	req = testutils.MakeReq(server.URL, "GET", "/api/v3/generations/"+request.UUID, "")
	res = testutils.HTTPAuthDo(t, db, req, anotherUser)

	assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
}
