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

package database

// FlashcardSource indicates how a flashcard was created. It is set once at
// creation and never changes afterwards.
type FlashcardSource string

const (
	// FlashcardSourceManual is a flashcard typed in by the user
	FlashcardSourceManual FlashcardSource = "manual"
	// FlashcardSourceAIGenerated is a flashcard produced by a generation request
	FlashcardSourceAIGenerated FlashcardSource = "ai_generated"
)

// Valid reports whether the source is a known value
func (s FlashcardSource) Valid() bool {
	switch s {
	case FlashcardSourceManual, FlashcardSourceAIGenerated:
		return true
	}

	return false
}

// FlashcardStatus is the lifecycle state of a flashcard.
type FlashcardStatus string

const (
	// FlashcardStatusActive is a flashcard in the review rotation
	FlashcardStatusActive FlashcardStatus = "active"
	// FlashcardStatusPendingReview is an AI-generated flashcard awaiting
	// the user's approval
	FlashcardStatusPendingReview FlashcardStatus = "pending_review"
	// FlashcardStatusRejected is a flashcard the user turned down. It is a
	// terminal state.
	FlashcardStatusRejected FlashcardStatus = "rejected"
)

// Valid reports whether the status is a known value
func (s FlashcardStatus) Valid() bool {
	switch s {
	case FlashcardStatusActive, FlashcardStatusPendingReview, FlashcardStatusRejected:
		return true
	}

	return false
}
