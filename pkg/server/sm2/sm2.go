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

// Package sm2 implements the SuperMemo-2 spaced-repetition algorithm. It is
// a pure computation with no I/O; the caller supplies the current time.
package sm2

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	// QualityMin is the lowest recall quality score
	QualityMin = 0
	// QualityMax is the highest recall quality score
	QualityMax = 5
	// qualityPassing is the lowest score counted as a successful recall
	qualityPassing = 3

	// EaseFloor is the minimum ease factor
	EaseFloor = 1.3
	// DefaultEase is the ease factor assigned to a new flashcard
	DefaultEase = 2.5
)

// ErrQualityOutOfRange is an error for a recall quality outside [0, 5]
var ErrQualityOutOfRange = errors.New("quality must be between 0 and 5")

// Result is the scheduling state computed from one review
type Result struct {
	// Interval is the number of days until the next review
	Interval int
	// Ease is the updated ease factor, rounded to 2 decimal places
	Ease float64
	// NextReviewAt is when the card becomes due again
	NextReviewAt time.Time
}

// Compute applies one review with the given recall quality to the current
// scheduling state and returns the next state.
//
// A failed recall (quality < 3) resets the interval to zero and leaves the
// ease factor untouched, so the card comes due immediately without being
// punished twice on the following pass. A successful recall grows the
// interval (0 -> 1 day, 1 -> 6 days, then interval * ease) and adjusts the
// ease factor by how close the score was to perfect, never dropping it
// below the 1.3 floor.
func Compute(currentInterval int, currentEase float64, quality int, now time.Time) (Result, error) {
	if quality < QualityMin || quality > QualityMax {
		return Result{}, ErrQualityOutOfRange
	}

	if quality < qualityPassing {
		return Result{
			Interval:     0,
			Ease:         currentEase,
			NextReviewAt: now,
		}, nil
	}

	var interval int
	switch currentInterval {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		interval = int(math.Round(float64(currentInterval) * currentEase))
	}

	miss := float64(QualityMax - quality)
	ease := currentEase + (0.1 - miss*(0.08+miss*0.02))
	if ease < EaseFloor {
		ease = EaseFloor
	}

	return Result{
		Interval:     interval,
		Ease:         roundEase(ease),
		NextReviewAt: now.AddDate(0, 0, interval),
	}, nil
}

// roundEase rounds to 2 decimal places so that the stored ease factor stays
// stable across repeated reviews instead of accumulating float drift.
func roundEase(ease float64) float64 {
	return math.Round(ease*100) / 100
}
