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

package presenters

import (
	"time"

	"github.com/mnemo/mnemo/pkg/server/database"
)

// Flashcard is a result of PresentFlashcard
type Flashcard struct {
	UUID                  string     `json:"uuid"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	FrontText             string     `json:"front_text"`
	BackText              string     `json:"back_text"`
	Source                string     `json:"source"`
	Status                string     `json:"status"`
	Interval              int        `json:"interval"`
	EaseFactor            float64    `json:"ease_factor"`
	NextReviewAt          *time.Time `json:"next_review_at"`
	GenerationRequestUUID *string    `json:"generation_request_uuid"`
}

// PresentFlashcard presents a flashcard
func PresentFlashcard(card database.Flashcard) Flashcard {
	return Flashcard{
		UUID:                  card.UUID,
		CreatedAt:             FormatTS(card.CreatedAt),
		UpdatedAt:             FormatTS(card.UpdatedAt),
		FrontText:             card.FrontText,
		BackText:              card.BackText,
		Source:                string(card.Source),
		Status:                string(card.Status),
		Interval:              card.Interval,
		EaseFactor:            card.EaseFactor,
		NextReviewAt:          FormatTSPtr(card.NextReviewAt),
		GenerationRequestUUID: card.GenerationRequestUUID,
	}
}

// PresentFlashcards presents flashcards
func PresentFlashcards(cards []database.Flashcard) []Flashcard {
	ret := []Flashcard{}

	for _, card := range cards {
		p := PresentFlashcard(card)
		ret = append(ret, p)
	}

	return ret
}
