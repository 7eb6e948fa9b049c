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

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID        string     `json:"uuid" gorm:"type:text;index"`
	Email       string     `json:"email" gorm:"uniqueIndex"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"-"`
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"index"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Flashcard is a model for a unit of study content. Scheduling fields obey
// the following invariant: an active card always has next_review_at set,
// interval >= 0 and ease_factor >= 1.3; a pending_review or rejected card
// has next_review_at null.
type Flashcard struct {
	Model
	UUID                  string          `json:"uuid" gorm:"uniqueIndex;type:text"`
	UserID                int             `json:"user_id" gorm:"index"`
	FrontText             string          `json:"front_text"`
	BackText              string          `json:"back_text"`
	Source                FlashcardSource `json:"source" gorm:"type:text"`
	Status                FlashcardStatus `json:"status" gorm:"type:text;index"`
	Interval              int             `json:"interval" gorm:"default:0"`
	EaseFactor            float64         `json:"ease_factor" gorm:"default:2.5"`
	NextReviewAt          *time.Time      `json:"next_review_at" gorm:"index"`
	GenerationRequestUUID *string         `json:"generation_request_uuid" gorm:"type:text;index"`
}

// GenerationRequest is a record of one AI-generation invocation. Deleting a
// request detaches its flashcards rather than deleting them.
type GenerationRequest struct {
	Model
	UUID       string `json:"uuid" gorm:"uniqueIndex;type:text"`
	UserID     int    `json:"user_id" gorm:"index"`
	SourceText string `json:"source_text"`
}
