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

// Package generation supplies flashcard drafts from an AI provider. The
// core only depends on the DraftSource interface; the bundled client talks
// to any OpenAI-compatible chat completion endpoint.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Draft is one front/back pair proposed by the AI provider
type Draft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// DraftSource produces flashcard drafts from a piece of source text
type DraftSource interface {
	GenerateDrafts(ctx context.Context, sourceText string) ([]Draft, error)
}

const systemPrompt = "You are a flashcard author. Given study material, produce concise question/answer flashcards. Respond with a JSON array of objects, each with a \"front\" and a \"back\" string. Respond with JSON only."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client is a DraftSource backed by an OpenAI-compatible HTTP API
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given endpoint
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// GenerateDrafts asks the provider for flashcard drafts covering the given
// source text
func (c *Client) GenerateDrafts(ctx context.Context, sourceText string) ([]Draft, error) {
	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sourceText},
		},
		Stream: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, errors.Wrap(err, "constructing request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling provider")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("provider returned status %d", res.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("provider returned no choices")
	}

	return parseDrafts(parsed.Choices[0].Message.Content)
}

// parseDrafts extracts the draft array from the model output. Some models
// wrap JSON in a markdown code fence.
func parseDrafts(content string) ([]Draft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []Draft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &drafts); err != nil {
		return nil, errors.Wrap(err, "parsing drafts")
	}

	return drafts, nil
}
