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

	"github.com/mnemo/mnemo/pkg/clock"
	"github.com/mnemo/mnemo/pkg/server/config"
	"github.com/mnemo/mnemo/pkg/server/ratelimit"
)

// NewTest returns an app for testing. The caller assigns the database and
// overrides any other collaborator the test cares about.
func NewTest() App {
	c := clock.NewMock()

	return App{
		Clock:             c,
		Config:            config.Config{AppEnv: "TEST", WebURL: "http://mnemo.test"},
		EmailBackend:      &testEmailBackend{},
		GenerationLimiter: ratelimit.NewLimiter(ratelimit.NewMemoryStore(), c, 10, time.Hour),
	}
}

// testEmailBackend is a no-op email backend that records sent emails
type testEmailBackend struct {
	emails []testEmail
}

type testEmail struct {
	templateType string
	from         string
	to           []string
	data         interface{}
}

// SendEmail is an implementation of mailer.Backend
func (b *testEmailBackend) SendEmail(templateType, from string, to []string, data interface{}) error {
	b.emails = append(b.emails, testEmail{
		templateType: templateType,
		from:         from,
		to:           to,
		data:         data,
	})

	return nil
}
