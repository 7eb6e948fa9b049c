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
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/generation"
	"github.com/mnemo/mnemo/pkg/server/helpers"
)

// GenerationResource is the rate-limited resource name for AI generation.
// The HTTP layer checks the generation limiter against it before calling
// CreateGenerationRequest.
const GenerationResource = "generation"

// CreateGenerationRequest persists a generation request together with its
// batch of AI-sourced flashcards. The drafts enter the pending_review state
// with no scheduled review. Both writes happen in one transaction so that a
// failing batch never leaves an orphaned request row behind.
func (a *App) CreateGenerationRequest(user database.User, sourceText string, drafts []generation.Draft) (database.GenerationRequest, []database.Flashcard, error) {
	sourceText = strings.TrimSpace(sourceText)
	if sourceText == "" {
		return database.GenerationRequest{}, nil, ErrSourceTextRequired
	}
	if len(sourceText) > maxSourceTextLen {
		return database.GenerationRequest{}, nil, ErrSourceTextTooLong
	}
	if len(drafts) == 0 {
		return database.GenerationRequest{}, nil, ErrDraftsRequired
	}
	if len(drafts) > maxBatchSize {
		return database.GenerationRequest{}, nil, ErrBatchTooLarge
	}

	requestUUID, err := helpers.GenUUID()
	if err != nil {
		return database.GenerationRequest{}, nil, err
	}

	now := a.Clock.Now()
	cards := make([]database.Flashcard, 0, len(drafts))
	for _, draft := range drafts {
		front := strings.TrimSpace(draft.Front)
		back := strings.TrimSpace(draft.Back)
		if err := validateCardText(front, back); err != nil {
			return database.GenerationRequest{}, nil, err
		}

		cardUUID, err := helpers.GenUUID()
		if err != nil {
			return database.GenerationRequest{}, nil, err
		}

		card := newFlashcard(cardUUID, user.ID, front, back, database.FlashcardSourceAIGenerated, now)
		card.GenerationRequestUUID = &requestUUID
		cards = append(cards, card)
	}

	request := database.GenerationRequest{
		UUID:       requestUUID,
		UserID:     user.ID,
		SourceText: sourceText,
	}

	tx := a.DB.Begin()

	if err := tx.Create(&request).Error; err != nil {
		tx.Rollback()
		return database.GenerationRequest{}, nil, PersistenceError{Op: "inserting generation request", Err: err}
	}
	if err := tx.Create(&cards).Error; err != nil {
		tx.Rollback()
		return database.GenerationRequest{}, nil, PersistenceError{Op: "inserting generated flashcards", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return database.GenerationRequest{}, nil, PersistenceError{Op: "committing generation request", Err: err}
	}

	return request, cards, nil
}

// GetUserGenerationRequestByUUID retrieves a generation request owned by
// the given user
func (a *App) GetUserGenerationRequestByUUID(userID int, uuid string) (database.GenerationRequest, error) {
	var request database.GenerationRequest

	err := a.DB.Where("user_id = ? AND uuid = ?", userID, uuid).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.GenerationRequest{}, NotFoundError{Resource: "generation request"}
	}
	if err != nil {
		return database.GenerationRequest{}, PersistenceError{Op: "finding generation request", Err: err}
	}

	return request, nil
}

// GetGenerationRequestFlashcards returns the flashcards created by the
// given generation request, in creation order
func (a *App) GetGenerationRequestFlashcards(userID int, requestUUID string) ([]database.Flashcard, error) {
	cards := []database.Flashcard{}

	err := a.DB.
		Where("user_id = ? AND generation_request_uuid = ?", userID, requestUUID).
		Order("id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, PersistenceError{Op: "finding generated flashcards", Err: err}
	}

	return cards, nil
}

// DeleteGenerationRequest removes a generation request. Its flashcards are
// detached, not deleted: their back-reference is nulled and they keep
// whatever lifecycle state they are in.
func (a *App) DeleteGenerationRequest(user database.User, uuid string) error {
	request, err := a.GetUserGenerationRequestByUUID(user.ID, uuid)
	if err != nil {
		return err
	}

	tx := a.DB.Begin()

	err = tx.Model(&database.Flashcard{}).
		Where("user_id = ? AND generation_request_uuid = ?", user.ID, request.UUID).
		Update("generation_request_uuid", nil).Error
	if err != nil {
		tx.Rollback()
		return PersistenceError{Op: "detaching flashcards", Err: err}
	}

	if err := tx.Delete(&request).Error; err != nil {
		tx.Rollback()
		return PersistenceError{Op: "deleting generation request", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return PersistenceError{Op: "committing generation request deletion", Err: err}
	}

	return nil
}
