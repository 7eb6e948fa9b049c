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

// Package job provides the background jobs that run on a schedule
package job

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron"

	"github.com/mnemo/mnemo/pkg/server/app"
	"github.com/mnemo/mnemo/pkg/server/database"
	"github.com/mnemo/mnemo/pkg/server/log"
	"github.com/mnemo/mnemo/pkg/server/mailer"
)

// Runner schedules and runs the background jobs
type Runner struct {
	app  *app.App
	cron *cron.Cron
}

// NewRunner returns a new job runner
func NewRunner(a *app.App) *Runner {
	return &Runner{
		app:  a,
		cron: cron.New(),
	}
}

// Do schedules the jobs and starts the scheduler
func (r *Runner) Do() error {
	schedule := r.app.Config.ReminderSchedule

	if err := r.cron.AddFunc(schedule, r.sendReviewReminders); err != nil {
		return errors.Wrapf(err, "scheduling review reminders at %s", schedule)
	}

	r.cron.Start()

	log.WithFields(log.Fields{
		"schedule": schedule,
	}).Info("started background jobs")

	return nil
}

// Stop stops the scheduler. Jobs already running are not interrupted.
func (r *Runner) Stop() {
	r.cron.Stop()
}

// dueRow is one user's count of flashcards due for review
type dueRow struct {
	UserID   int
	DueCount int
}

// sendReviewReminders emails every user that has flashcards due for review.
// A failure for one user does not block the others.
func (r *Runner) sendReviewReminders() {
	now := r.app.Clock.Now()

	rows := []dueRow{}
	err := r.app.DB.Model(&database.Flashcard{}).
		Select("user_id, count(*) as due_count").
		Where("status = ? AND next_review_at <= ?", database.FlashcardStatusActive, now).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		log.ErrorWrap(err, "counting due flashcards")
		return
	}

	for _, row := range rows {
		if err := r.remindUser(row); err != nil {
			log.WithFields(log.Fields{
				"user_id": row.UserID,
			}).ErrorWrap(err, "sending review reminder")
		}
	}
}

func (r *Runner) remindUser(row dueRow) error {
	var user database.User
	if err := r.app.DB.Where("id = ?", row.UserID).First(&user).Error; err != nil {
		return errors.Wrap(err, "finding user")
	}

	data := mailer.ReviewReminderTmplData{
		Email:    user.Email,
		DueCount: row.DueCount,
		WebURL:   r.app.Config.WebURL,
	}

	err := r.app.EmailBackend.SendEmail(mailer.EmailTypeReviewReminder, "noreply@getmnemo.com", []string{user.Email}, data)
	if err != nil {
		return errors.Wrap(err, "sending email")
	}

	return nil
}
