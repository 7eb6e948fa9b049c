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

// Package mailer provides a way to send emails
package mailer

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	"io"
	ttemplate "text/template"

	"github.com/aymerick/douceur/inliner"
	"github.com/pkg/errors"

	"github.com/mnemo/mnemo/pkg/server/mailer/templates"
)

var (
	// EmailTypeWelcome represents a welcome email
	EmailTypeWelcome = "welcome"
	// EmailTypeReviewReminder represents a due-card reminder email
	EmailTypeReviewReminder = "review_reminder"
)

var (
	// EmailKindText is the type of text email
	EmailKindText = "text/plain"
	// EmailKindHTML is the type of HTML email
	EmailKindHTML = "text/html"
)

// tmpl is the common interface shared between Template from
// html/template and text/template
type tmpl interface {
	Execute(wr io.Writer, data interface{}) error
}

// template wraps a template with its subject line
type template struct {
	tmpl    tmpl
	subject string
}

// Templates holds the parsed email templates with their subjects
type Templates map[string]template

func getTemplateKey(name, kind string) string {
	return fmt.Sprintf("%s.%s", name, kind)
}

func (tmpl Templates) get(name, kind string) (template, error) {
	key := getTemplateKey(name, kind)
	t := tmpl[key]
	if t.tmpl == nil {
		return template{}, errors.Errorf("unsupported template '%s' with type '%s'", name, kind)
	}

	return t, nil
}

func (tmpl Templates) set(name, kind string, t tmpl, subject string) {
	key := getTemplateKey(name, kind)
	tmpl[key] = template{
		tmpl:    t,
		subject: subject,
	}
}

// NewTemplates initializes templates
func NewTemplates() Templates {
	welcomeText, err := initTextTmpl(EmailTypeWelcome)
	if err != nil {
		panic(errors.Wrap(err, "initializing welcome template"))
	}
	reminderText, err := initTextTmpl(EmailTypeReviewReminder)
	if err != nil {
		panic(errors.Wrap(err, "initializing review reminder template"))
	}
	reminderHTML, err := initHTMLTmpl(EmailTypeReviewReminder)
	if err != nil {
		panic(errors.Wrap(err, "initializing review reminder html template"))
	}

	T := Templates{}
	T.set(EmailTypeWelcome, EmailKindText, welcomeText, "Welcome to Mnemo!")
	T.set(EmailTypeReviewReminder, EmailKindText, reminderText, "You have flashcards due for review")
	T.set(EmailTypeReviewReminder, EmailKindHTML, reminderHTML, "You have flashcards due for review")

	return T
}

// initTextTmpl returns a template instance by parsing the template with the given name
func initTextTmpl(templateName string) (tmpl, error) {
	filename := fmt.Sprintf("%s.txt", templateName)

	content, err := templates.Files.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading template")
	}

	t := ttemplate.New(templateName)
	if _, err = t.Parse(string(content)); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}

	return t, nil
}

// initHTMLTmpl returns an HTML template instance by parsing the template
// with the given name
func initHTMLTmpl(templateName string) (tmpl, error) {
	filename := fmt.Sprintf("%s.html", templateName)

	content, err := templates.Files.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading template")
	}

	t := htemplate.New(templateName)
	if _, err = t.Parse(string(content)); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}

	return t, nil
}

// Execute executes the template with the given name and kind and returns
// the subject and the body. HTML bodies get their CSS inlined so that the
// styles survive email clients that strip style blocks.
func (tmpl Templates) Execute(name, kind string, data interface{}) (string, string, error) {
	t, err := tmpl.get(name, kind)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", "", errors.Wrap(err, "executing template")
	}

	body := buf.String()
	if kind == EmailKindHTML {
		body, err = inliner.Inline(body)
		if err != nil {
			return "", "", errors.Wrap(err, "inlining css")
		}
	}

	return t.subject, body, nil
}
