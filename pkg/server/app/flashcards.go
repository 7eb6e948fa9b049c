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
	"github.com/mnemo/mnemo/pkg/server/helpers"
)

const (
	// maxCardTextLen is the length bound for front and back text
	maxCardTextLen = 1000
	// maxSourceTextLen is the length bound for generation source text
	maxSourceTextLen = 10000
)

func validateCardText(front, back string) error {
	if front == "" {
		return ErrFrontTextRequired
	}
	if back == "" {
		return ErrBackTextRequired
	}
	if len(front) > maxCardTextLen {
		return ErrFrontTextTooLong
	}
	if len(back) > maxCardTextLen {
		return ErrBackTextTooLong
	}

	return nil
}

// CreateFlashcard creates a manually entered flashcard. Manual cards enter
// the review rotation immediately: they are active with a zero interval, the
// default ease factor, and a review due now.
func (a *App) CreateFlashcard(user database.User, front, back string) (database.Flashcard, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)

	if err := validateCardText(front, back); err != nil {
		return database.Flashcard{}, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Flashcard{}, err
	}

	card := newFlashcard(uuid, user.ID, front, back, database.FlashcardSourceManual, a.Clock.Now())
	if err := a.DB.Create(&card).Error; err != nil {
		return database.Flashcard{}, PersistenceError{Op: "inserting flashcard", Err: err}
	}

	return card, nil
}

// GetUserFlashcardByUUID retrieves a flashcard owned by the given user. A
// card that exists but belongs to someone else is reported as not found.
func (a *App) GetUserFlashcardByUUID(userID int, uuid string) (database.Flashcard, error) {
	var card database.Flashcard

	err := a.DB.Where("user_id = ? AND uuid = ?", userID, uuid).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Flashcard{}, NotFoundError{Resource: "flashcard"}
	}
	if err != nil {
		return database.Flashcard{}, PersistenceError{Op: "finding flashcard", Err: err}
	}

	return card, nil
}

// GetFlashcardsParams is params for finding flashcards
type GetFlashcardsParams struct {
	Status  database.FlashcardStatus
	Page    int
	PerPage int
}

// GetFlashcardsResult is the result of getting flashcards
type GetFlashcardsResult struct {
	Flashcards []database.Flashcard
	Total      int64
}

// GetFlashcards returns the user's flashcards, optionally filtered by
// status, newest first
func (a *App) GetFlashcards(userID int, params GetFlashcardsParams) (GetFlashcardsResult, error) {
	conn := a.DB.Where("user_id = ?", userID)
	if params.Status != "" {
		if !params.Status.Valid() {
			return GetFlashcardsResult{}, ErrInvalidStatus
		}
		conn = conn.Where("status = ?", params.Status)
	}

	var total int64
	if err := conn.Model(&database.Flashcard{}).Count(&total).Error; err != nil {
		return GetFlashcardsResult{}, PersistenceError{Op: "counting flashcards", Err: err}
	}

	cards := []database.Flashcard{}
	if total != 0 {
		conn = conn.Order("created_at DESC, id DESC")
		conn = paginate(conn, params.Page, params.PerPage)

		if err := conn.Find(&cards).Error; err != nil {
			return GetFlashcardsResult{}, PersistenceError{Op: "finding flashcards", Err: err}
		}
	}

	return GetFlashcardsResult{Flashcards: cards, Total: total}, nil
}

// UpdateFlashcardParams is the parameters for updating a flashcard. Nil
// fields are left untouched.
type UpdateFlashcardParams struct {
	FrontText *string
	BackText  *string
	Status    *database.FlashcardStatus
}

// UpdateFlashcard applies a free-form edit to a flashcard. When the status
// is force-set, the scheduling fields are re-normalized so that the
// scheduling invariant holds: an active card always has a next review time,
// and a pending or rejected card never does.
func (a *App) UpdateFlashcard(user database.User, uuid string, p UpdateFlashcardParams) (database.Flashcard, error) {
	card, err := a.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		return database.Flashcard{}, err
	}

	if p.FrontText != nil {
		card.FrontText = strings.TrimSpace(*p.FrontText)
	}
	if p.BackText != nil {
		card.BackText = strings.TrimSpace(*p.BackText)
	}
	if err := validateCardText(card.FrontText, card.BackText); err != nil {
		return database.Flashcard{}, err
	}

	if p.Status != nil {
		status := *p.Status
		if !status.Valid() {
			return database.Flashcard{}, ErrInvalidStatus
		}

		card.Status = status
		switch status {
		case database.FlashcardStatusActive:
			if card.NextReviewAt == nil {
				now := a.Clock.Now()
				card.NextReviewAt = &now
			}
		case database.FlashcardStatusPendingReview, database.FlashcardStatusRejected:
			card.NextReviewAt = nil
		}
	}

	if err := a.DB.Save(&card).Error; err != nil {
		return database.Flashcard{}, PersistenceError{Op: "updating flashcard", Err: err}
	}

	return card, nil
}

// DeleteFlashcard removes a flashcard owned by the given user
func (a *App) DeleteFlashcard(user database.User, uuid string) error {
	card, err := a.GetUserFlashcardByUUID(user.ID, uuid)
	if err != nil {
		return err
	}

	if err := a.DB.Delete(&card).Error; err != nil {
		return PersistenceError{Op: "deleting flashcard", Err: err}
	}

	return nil
}

func paginate(conn *gorm.DB, page, perPage int) *gorm.DB {
	if perPage <= 0 {
		perPage = 20
	}
	if page > 0 {
		conn = conn.Offset(perPage * (page - 1))
	}

	return conn.Limit(perPage)
}
