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

// GenerationRequest is a result of PresentGenerationRequest
type GenerationRequest struct {
	UUID       string      `json:"uuid"`
	CreatedAt  time.Time   `json:"created_at"`
	SourceText string      `json:"source_text"`
	Flashcards []Flashcard `json:"flashcards"`
}

// PresentGenerationRequest presents a generation request along with the
// flashcards it produced
func PresentGenerationRequest(request database.GenerationRequest, cards []database.Flashcard) GenerationRequest {
	return GenerationRequest{
		UUID:       request.UUID,
		CreatedAt:  FormatTS(request.CreatedAt),
		SourceText: request.SourceText,
		Flashcards: PresentFlashcards(cards),
	}
}
