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
	"strings"
	"testing"

	"github.com/mnemo/mnemo/pkg/assert"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/generation"
	"github.com/mnemo/mnemo/pkg/server/testutils"
)

func TestCreateGenerationRequest(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	drafts := []generation.Draft{
		{Front: "  What is Go?  ", Back: "A programming language"},
		{Front: "What is a goroutine?", Back: " A lightweight thread \n"},
	}

	request, cards, err := a.CreateGenerationRequest(user, "  Go is a language designed at Google.  ", drafts)
	if err != nil {
		t.Fatalf("creating generation request: %v", err)
	}

	assert.Equal(t, request.SourceText, "Go is a language designed at Google.", "source text mismatch")
	assert.Equal(t, request.UserID, user.ID, "user id mismatch")
	assert.Equal(t, len(cards), 2, "card count mismatch")

	var requestCount int64
	testutils.MustExec(t, db.Model(&database.GenerationRequest{}).Count(&requestCount), "counting requests")
	assert.Equal(t, requestCount, int64(1), "request count mismatch")

	var records []database.Flashcard
	testutils.MustExec(t, db.Where("user_id = ?", user.ID).Order("id ASC").Find(&records), "finding flashcards")
	assert.Equal(t, len(records), 2, "stored card count mismatch")

	assert.Equal(t, records[0].FrontText, "What is Go?", "front text mismatch")
	assert.Equal(t, records[1].BackText, "A lightweight thread", "back text mismatch")

	for _, record := range records {
		assert.Equal(t, record.Source, database.FlashcardSourceAIGenerated, "source mismatch")
		assert.Equal(t, record.Status, database.FlashcardStatusPendingReview, "status mismatch")
		assert.Equal(t, record.EaseFactor, 2.5, "ease factor mismatch")
		if record.NextReviewAt != nil {
			t.Errorf("pending card %s should not be scheduled", record.UUID)
		}
		if record.GenerationRequestUUID == nil || *record.GenerationRequestUUID != request.UUID {
			t.Errorf("card %s is not linked to the request", record.UUID)
		}
	}
}

func TestCreateGenerationRequest_Validation(t *testing.T) {
	validDrafts := []generation.Draft{{Front: "front", Back: "back"}}

	testCases := []struct {
		name       string
		sourceText string
		drafts     []generation.Draft
		expected   error
	}{
		{
			name:       "empty source text",
			sourceText: "   ",
			drafts:     validDrafts,
			expected:   ErrSourceTextRequired,
		},
		{
			name:       "source text too long",
			sourceText: strings.Repeat("a", maxSourceTextLen+1),
			drafts:     validDrafts,
			expected:   ErrSourceTextTooLong,
		},
		{
			name:       "no drafts",
			sourceText: "some source",
			drafts:     nil,
			expected:   ErrDraftsRequired,
		},
		{
			name:       "too many drafts",
			sourceText: "some source",
			drafts:     make([]generation.Draft, maxBatchSize+1),
			expected:   ErrBatchTooLarge,
		},
		{
			name:       "blank draft front",
			sourceText: "some source",
			drafts:     []generation.Draft{{Front: "  ", Back: "back"}},
			expected:   ErrFrontTextRequired,
		},
		{
			name:       "draft back too long",
			sourceText: "some source",
			drafts:     []generation.Draft{{Front: "front", Back: strings.Repeat("b", maxCardTextLen+1)}},
			expected:   ErrBackTextTooLong,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

			a := NewTest()
			a.DB = db

			_, _, err := a.CreateGenerationRequest(user, tc.sourceText, tc.drafts)
			assert.Equal(t, err, tc.expected, "error mismatch")

			// nothing should be persisted on a failed create
			var requestCount, cardCount int64
			testutils.MustExec(t, db.Model(&database.GenerationRequest{}).Count(&requestCount), "counting requests")
			testutils.MustExec(t, db.Model(&database.Flashcard{}).Count(&cardCount), "counting flashcards")
			assert.Equal(t, requestCount, int64(0), "request count mismatch")
			assert.Equal(t, cardCount, int64(0), "card count mismatch")
		})
	}
}

func TestGetGenerationRequestFlashcards(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	drafts := []generation.Draft{
		{Front: "f1", Back: "b1"},
		{Front: "f2", Back: "b2"},
	}
	request, _, err := a.CreateGenerationRequest(user, "source", drafts)
	if err != nil {
		t.Fatalf("creating generation request: %v", err)
	}

	// an unrelated card is never part of the batch
	testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "manual", BackText: "card",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5,
	})

	cards, err := a.GetGenerationRequestFlashcards(user.ID, request.UUID)
	if err != nil {
		t.Fatalf("getting generated flashcards: %v", err)
	}

	assert.Equal(t, len(cards), 2, "card count mismatch")
	assert.Equal(t, cards[0].FrontText, "f1", "first card mismatch")
	assert.Equal(t, cards[1].FrontText, "f2", "second card mismatch")
}

func TestGetUserGenerationRequestByUUID_NotOwned(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	owner := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	intruder := testutils.SetupUserData(db, "bob@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	request, _, err := a.CreateGenerationRequest(owner, "source", []generation.Draft{{Front: "f", Back: "b"}})
	if err != nil {
		t.Fatalf("creating generation request: %v", err)
	}

	_, err = a.GetUserGenerationRequestByUUID(intruder.ID, request.UUID)
	if _, ok := err.(NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteGenerationRequest(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	request, cards, err := a.CreateGenerationRequest(user, "source", []generation.Draft{
		{Front: "f1", Back: "b1"},
		{Front: "f2", Back: "b2"},
	})
	if err != nil {
		t.Fatalf("creating generation request: %v", err)
	}

	if err := a.DeleteGenerationRequest(user, request.UUID); err != nil {
		t.Fatalf("deleting generation request: %v", err)
	}

	var requestCount int64
	testutils.MustExec(t, db.Model(&database.GenerationRequest{}).Count(&requestCount), "counting requests")
	assert.Equal(t, requestCount, int64(0), "request count mismatch")

	// the cards survive the deletion, detached from the request
	for _, card := range cards {
		var record database.Flashcard
		testutils.MustExec(t, db.Where("uuid = ?", card.UUID).First(&record), "finding flashcard")
		if record.GenerationRequestUUID != nil {
			t.Errorf("card %s should be detached", record.UUID)
		}
		assert.Equal(t, record.Status, database.FlashcardStatusPendingReview, "status mismatch")
	}
}
