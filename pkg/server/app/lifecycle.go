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
	"time"

	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/sm2"
)

// maxBatchSize is the most flashcards one batch operation may touch
const maxBatchSize = 50

// newFlashcard builds a flashcard in its initial lifecycle state. The
// initial state depends on provenance: manual cards are active and due
// immediately, AI-generated cards wait in pending_review with no scheduled
// review until the user approves them.
func newFlashcard(uuid string, userID int, front, back string, source database.FlashcardSource, now time.Time) database.Flashcard {
	card := database.Flashcard{
		UUID:       uuid,
		UserID:     userID,
		FrontText:  front,
		BackText:   back,
		Source:     source,
		Interval:   0,
		EaseFactor: sm2.DefaultEase,
	}

	switch source {
	case database.FlashcardSourceManual:
		card.Status = database.FlashcardStatusActive
		card.NextReviewAt = &now
	case database.FlashcardSourceAIGenerated:
		card.Status = database.FlashcardStatusPendingReview
		card.NextReviewAt = nil
	}

	return card
}

// ApproveFlashcard moves a pending flashcard into the review rotation. The
// card becomes due immediately. Approving a card in any other state fails
// with InvalidStateError; rejected cards stay rejected.
func (a *App) ApproveFlashcard(user database.User, uuid string) (database.Flashcard, error) {
	card, err := a.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		return database.Flashcard{}, err
	}

	switch card.Status {
	case database.FlashcardStatusPendingReview:
	case database.FlashcardStatusActive, database.FlashcardStatusRejected:
		return database.Flashcard{}, InvalidStateError{
			Expected: database.FlashcardStatusPendingReview,
			Actual:   card.Status,
		}
	default:
		return database.Flashcard{}, ErrInvalidStatus
	}

	now := a.Clock.Now()
	card.Status = database.FlashcardStatusActive
	card.NextReviewAt = &now

	if err := a.DB.Save(&card).Error; err != nil {
		return database.Flashcard{}, PersistenceError{Op: "approving flashcard", Err: err}
	}

	return card, nil
}

// RejectFlashcard turns down a pending flashcard. Rejection is terminal: no
// transition leaves the rejected state.
func (a *App) RejectFlashcard(user database.User, uuid string) (database.Flashcard, error) {
	card, err := a.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		return database.Flashcard{}, err
	}

	switch card.Status {
	case database.FlashcardStatusPendingReview:
	case database.FlashcardStatusActive, database.FlashcardStatusRejected:
		return database.Flashcard{}, InvalidStateError{
			Expected: database.FlashcardStatusPendingReview,
			Actual:   card.Status,
		}
	default:
		return database.Flashcard{}, ErrInvalidStatus
	}

	card.Status = database.FlashcardStatusRejected
	card.NextReviewAt = nil

	if err := a.DB.Save(&card).Error; err != nil {
		return database.Flashcard{}, PersistenceError{Op: "rejecting flashcard", Err: err}
	}

	return card, nil
}

// BatchApproveFailure reports why one flashcard in a batch could not be
// approved
type BatchApproveFailure struct {
	UUID   string `json:"uuid"`
	Reason string `json:"reason"`
}

// BatchApproveResult is the per-id outcome of a batch approval
type BatchApproveResult struct {
	Approved []string              `json:"approved"`
	Failed   []BatchApproveFailure `json:"failed"`
}

// BatchApprove approves each of the given flashcards independently. Partial
// failure is expected: failures are reported per id instead of aborting the
// batch, and ids already processed stay approved.
func (a *App) BatchApprove(user database.User, uuids []string) (BatchApproveResult, error) {
	if len(uuids) == 0 {
		return BatchApproveResult{}, ErrBatchEmpty
	}
	if len(uuids) > maxBatchSize {
		return BatchApproveResult{}, ErrBatchTooLarge
	}

	result := BatchApproveResult{
		Approved: []string{},
		Failed:   []BatchApproveFailure{},
	}

	for _, uuid := range uuids {
		if _, err := a.ApproveFlashcard(user, uuid); err != nil {
			result.Failed = append(result.Failed, BatchApproveFailure{
				UUID:   uuid,
				Reason: err.Error(),
			})
			continue
		}

		result.Approved = append(result.Approved, uuid)
	}

	return result, nil
}
