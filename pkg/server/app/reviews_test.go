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
	"testing"
	"time"

	"github.com/mnemo/mnemo/pkg/assert"
	"github.com/mnemo/mnemo/pkg/clock"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/sm2"
	"github.com/mnemo/mnemo/pkg/server/testutils"
)

func TestGetDueFlashcards(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	other := testutils.SetupUserData(db, "bob@example.com", "pass1234")

	serverTime := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	// most overdue card
	overdue := testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "overdue", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.AddDate(0, 0, -2)),
	})
	// barely due card
	due := testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "due", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.Add(-time.Hour)),
	})
	// scheduled in the future
	testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "future", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.AddDate(0, 0, 3)),
	})
	// pending and rejected cards have no scheduled review
	testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "pending", BackText: "back",
		Source: database.FlashcardSourceAIGenerated, Status: database.FlashcardStatusPendingReview,
		EaseFactor: 2.5,
	})
	testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "rejected", BackText: "back",
		Source: database.FlashcardSourceAIGenerated, Status: database.FlashcardStatusRejected,
		EaseFactor: 2.5,
	})
	// another user's due card stays invisible
	testutils.SetupFlashcardData(db, other, database.Flashcard{
		FrontText: "other", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.AddDate(0, 0, -5)),
	})

	a := NewTest()
	a.DB = db
	a.Clock = mockClock

	result, err := a.GetDueFlashcards(user.ID, 20)
	if err != nil {
		t.Fatalf("getting due flashcards: %v", err)
	}

	assert.Equal(t, result.Total, int64(2), "total mismatch")
	assert.Equal(t, len(result.Flashcards), 2, "page size mismatch")
	assert.Equal(t, result.Flashcards[0].UUID, overdue.UUID, "most overdue card should come first")
	assert.Equal(t, result.Flashcards[1].UUID, due.UUID, "due card order mismatch")
}

func TestGetDueFlashcards_Truncation(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	serverTime := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	for i := 1; i <= 5; i++ {
		testutils.SetupFlashcardData(db, user, database.Flashcard{
			FrontText: "front", BackText: "back",
			Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
			EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.Add(-time.Duration(i) * time.Hour)),
		})
	}

	a := NewTest()
	a.DB = db
	a.Clock = mockClock

	// the page is truncated but the total still reports every due card
	result, err := a.GetDueFlashcards(user.ID, 2)
	if err != nil {
		t.Fatalf("getting due flashcards: %v", err)
	}
	assert.Equal(t, result.Total, int64(5), "total mismatch")
	assert.Equal(t, len(result.Flashcards), 2, "page size mismatch")
}

func TestSubmitReview(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	serverTime := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	card := testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "front", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		Interval: 0, EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.Add(-time.Hour)),
	})

	a := NewTest()
	a.DB = db
	a.Clock = mockClock

	reviewed, err := a.SubmitReview(user, card.UUID, 5)
	if err != nil {
		t.Fatalf("submitting review: %v", err)
	}

	assert.Equal(t, reviewed.Interval, 1, "interval mismatch")
	assert.Equal(t, reviewed.EaseFactor, 2.6, "ease factor mismatch")
	if reviewed.NextReviewAt == nil {
		t.Fatal("reviewed card should have a next review time")
	}
	assert.Equal(t, reviewed.NextReviewAt.Unix(), serverTime.AddDate(0, 0, 1).Unix(), "next review mismatch")

	var record database.Flashcard
	testutils.MustExec(t, db.Where("uuid = ?", card.UUID).First(&record), "finding flashcard")
	assert.Equal(t, record.Interval, 1, "stored interval mismatch")
	assert.Equal(t, record.EaseFactor, 2.6, "stored ease factor mismatch")
}

func TestSubmitReview_Failure(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	serverTime := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	card := testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "front", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		Interval: 6, EaseFactor: 2.5, NextReviewAt: timePtr(serverTime.Add(-time.Hour)),
	})

	a := NewTest()
	a.DB = db
	a.Clock = mockClock

	reviewed, err := a.SubmitReview(user, card.UUID, 2)
	if err != nil {
		t.Fatalf("submitting review: %v", err)
	}

	// a failed recall resets the interval, keeps the ease, and makes the
	// card due again immediately
	assert.Equal(t, reviewed.Interval, 0, "interval mismatch")
	assert.Equal(t, reviewed.EaseFactor, 2.5, "ease factor mismatch")
	assert.Equal(t, reviewed.NextReviewAt.Unix(), serverTime.Unix(), "next review mismatch")
}

func TestSubmitReview_NotActive(t *testing.T) {
	statuses := []database.FlashcardStatus{
		database.FlashcardStatusPendingReview,
		database.FlashcardStatusRejected,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

			card := testutils.SetupFlashcardData(db, user, database.Flashcard{
				FrontText: "front", BackText: "back",
				Source: database.FlashcardSourceAIGenerated, Status: status,
				EaseFactor: 2.5,
			})

			a := NewTest()
			a.DB = db

			_, err := a.SubmitReview(user, card.UUID, 5)
			stateErr, ok := err.(InvalidStateError)
			if !ok {
				t.Fatalf("expected InvalidStateError, got %v", err)
			}
			assert.Equal(t, stateErr.Expected, database.FlashcardStatusActive, "expected state mismatch")
		})
	}
}

func TestSubmitReview_QualityOutOfRange(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	card := testutils.SetupFlashcardData(db, user, database.Flashcard{
		FrontText: "front", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)),
	})

	a := NewTest()
	a.DB = db

	for _, quality := range []int{-1, 6} {
		if _, err := a.SubmitReview(user, card.UUID, quality); err != sm2.ErrQualityOutOfRange {
			t.Errorf("expected ErrQualityOutOfRange for quality %d, got %v", quality, err)
		}
	}
}

func TestSubmitReview_NotOwned(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	owner := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	intruder := testutils.SetupUserData(db, "bob@example.com", "pass1234")

	card := testutils.SetupFlashcardData(db, owner, database.Flashcard{
		FrontText: "front", BackText: "back",
		Source: database.FlashcardSourceManual, Status: database.FlashcardStatusActive,
		EaseFactor: 2.5, NextReviewAt: timePtr(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)),
	})

	a := NewTest()
	a.DB = db

	if _, err := a.SubmitReview(intruder, card.UUID, 5); err == nil {
		t.Fatal("reviewing someone else's card should fail")
	} else if _, ok := err.(NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
