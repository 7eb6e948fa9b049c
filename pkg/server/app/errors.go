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
	"fmt"

	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/database"
)

var (
	// ErrEmailRequired is an error for register/login with no email
	ErrEmailRequired = errors.New("Please enter an email")
	// ErrPasswordTooShort is an error for a password that is too short
	ErrPasswordTooShort = errors.New("Password should be longer than 8 characters")
	// ErrPasswordConfirmationMismatch is an error for a mismatched password confirmation
	ErrPasswordConfirmationMismatch = errors.New("Password confirmation does not match")
	// ErrDuplicateEmail is an error for an email that is already in use
	ErrDuplicateEmail = errors.New("The email is already in use")
	// ErrLoginInvalid is an error for an invalid email/password combination
	ErrLoginInvalid = errors.New("Wrong email and password combination")

	// ErrFrontTextRequired is an error for a flashcard with no front text
	ErrFrontTextRequired = errors.New("Please enter the front text")
	// ErrBackTextRequired is an error for a flashcard with no back text
	ErrBackTextRequired = errors.New("Please enter the back text")
	// ErrFrontTextTooLong is an error for front text over the length bound
	ErrFrontTextTooLong = errors.New("The front text is too long")
	// ErrBackTextTooLong is an error for back text over the length bound
	ErrBackTextTooLong = errors.New("The back text is too long")
	// ErrSourceTextRequired is an error for a generation request with no source text
	ErrSourceTextRequired = errors.New("Please enter the source text")
	// ErrSourceTextTooLong is an error for source text over the length bound
	ErrSourceTextTooLong = errors.New("The source text is too long")
	// ErrDraftsRequired is an error for a generation request with no drafts
	ErrDraftsRequired = errors.New("No flashcard drafts were provided")
	// ErrBatchEmpty is an error for a batch operation with no ids
	ErrBatchEmpty = errors.New("No flashcard ids were provided")
	// ErrBatchTooLarge is an error for a batch operation over the size bound
	ErrBatchTooLarge = errors.New("At most 50 flashcards can be processed at once")
	// ErrInvalidStatus is an error for an unknown flashcard status value
	ErrInvalidStatus = errors.New("Invalid flashcard status")
)

// NotFoundError indicates that the requested entity is absent or not owned
// by the caller. The two cases are indistinguishable on purpose so that the
// existence of other users' data never leaks.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// InvalidStateError indicates a lifecycle transition attempted from a state
// that does not permit it
type InvalidStateError struct {
	Expected database.FlashcardStatus
	Actual   database.FlashcardStatus
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("flashcard must be %s but is %s", e.Expected, e.Actual)
}

// PersistenceError indicates an underlying store failure. The cause is kept
// for logging; callers surface it as a generic server error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e PersistenceError) Unwrap() error {
	return e.Err
}
