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
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/sm2"
)

const (
	// defaultDueLimit is the page size used when the caller does not bound
	// the due queue
	defaultDueLimit = 20
	// maxDueLimit is the largest page the due queue returns
	maxDueLimit = 50
)

// DueFlashcardsResult is the result of selecting due flashcards. Total may
// exceed the number of returned cards.
type DueFlashcardsResult struct {
	Total      int64
	Flashcards []database.Flashcard
}

// GetDueFlashcards selects the user's flashcards due for review: active
// cards whose next review time has passed, most overdue first, truncated at
// limit. The total and the page are two independent reads; they may drift
// under concurrent review submissions, which is an accepted staleness
// window rather than a bug.
func (a *App) GetDueFlashcards(userID int, limit int) (DueFlashcardsResult, error) {
	if limit <= 0 {
		limit = defaultDueLimit
	}
	if limit > maxDueLimit {
		limit = maxDueLimit
	}

	now := a.Clock.Now()
	conn := a.DB.Where(
		"user_id = ? AND status = ? AND next_review_at <= ?",
		userID, database.FlashcardStatusActive, now,
	)

	var total int64
	if err := conn.Model(&database.Flashcard{}).Count(&total).Error; err != nil {
		return DueFlashcardsResult{}, PersistenceError{Op: "counting due flashcards", Err: err}
	}

	cards := []database.Flashcard{}
	if total != 0 {
		err := conn.Order("next_review_at ASC").Limit(limit).Find(&cards).Error
		if err != nil {
			return DueFlashcardsResult{}, PersistenceError{Op: "finding due flashcards", Err: err}
		}
	}

	return DueFlashcardsResult{Total: total, Flashcards: cards}, nil
}

// SubmitReview records one review of a flashcard with the given recall
// quality and reschedules it. Only active cards are reviewable; submitting
// a review for a pending or rejected card fails with InvalidStateError.
func (a *App) SubmitReview(user database.User, uuid string, quality int) (database.Flashcard, error) {
	card, err := a.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		return database.Flashcard{}, err
	}

	if card.Status != database.FlashcardStatusActive {
		return database.Flashcard{}, InvalidStateError{
			Expected: database.FlashcardStatusActive,
			Actual:   card.Status,
		}
	}

	result, err := sm2.Compute(card.Interval, card.EaseFactor, quality, a.Clock.Now())
	if err != nil {
		return database.Flashcard{}, err
	}

	card.Interval = result.Interval
	card.EaseFactor = result.Ease
	card.NextReviewAt = &result.NextReviewAt

	if err := a.DB.Save(&card).Error; err != nil {
		return database.Flashcard{}, PersistenceError{Op: "saving review", Err: err}
	}

	return card, nil
}
