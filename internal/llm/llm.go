// Package llm holds the prompt plumbing shared by every command that calls
// the model: summarization, structured extraction, and yes/no classification.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/pkg/anthropic"
)

// maxContentChars caps how much page content goes into a prompt.
const maxContentChars = 12000

// Engine runs prompts against the configured model.
type Engine struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewEngine creates an Engine.
func NewEngine(client anthropic.Client, cfg config.AnthropicConfig) *Engine {
	return &Engine{client: client, cfg: cfg}
}

const summarizeSystemPrompt = `You summarize web pages. Respond with a valid JSON object: {"title": "...", "summary": "<one paragraph>", "key_points": ["...", "..."]}. No prose outside the JSON.`

const summarizeUserPrompt = `URL: %s
Title: %s

Page content:
%s`

// Summarize produces a structured summary of a page.
func (e *Engine) Summarize(ctx context.Context, page model.Page) (*model.Summary, error) {
	resp, err := e.complete(ctx, summarizeSystemPrompt,
		fmt.Sprintf(summarizeUserPrompt, page.URL, page.Title, truncate(page.Markdown, maxContentChars)),
		"summarize")
	if err != nil {
		return nil, err
	}

	var out model.Summary
	if err := UnmarshalLenient(resp.Text, &out); err != nil {
		return nil, eris.Wrap(err, "llm: parse summary")
	}
	out.URL = page.URL
	if out.Title == "" {
		out.Title = page.Title
	}
	return &out, nil
}

const extractSystemPrompt = `You extract structured data from web pages. Respond with a valid JSON object containing exactly the requested fields. Use null for fields the page does not answer. No prose outside the JSON.`

const extractUserPrompt = `Fields to extract:
%s

URL: %s
Page content:
%s`

// Extract pulls the requested fields out of a page. Fields map keys to a
// short description of what to extract.
func (e *Engine) Extract(ctx context.Context, page model.Page, fields map[string]string) (map[string]any, error) {
	var spec strings.Builder
	for k, desc := range fields {
		fmt.Fprintf(&spec, "- %s: %s\n", k, desc)
	}

	resp, err := e.complete(ctx, extractSystemPrompt,
		fmt.Sprintf(extractUserPrompt, spec.String(), page.URL, truncate(page.Markdown, maxContentChars)),
		"extract")
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := UnmarshalLenient(resp.Text, &out); err != nil {
		return nil, eris.Wrap(err, "llm: parse extraction")
	}
	return out, nil
}

const compareSystemPrompt = `You compare two web pages. Respond with a short markdown report: a one-paragraph verdict followed by bullet points of concrete differences.`

const compareUserPrompt = `Page A (%s):
%s

Page B (%s):
%s`

// Compare produces a markdown comparison of two pages.
func (e *Engine) Compare(ctx context.Context, a, b model.Page) (string, error) {
	resp, err := e.complete(ctx, compareSystemPrompt,
		fmt.Sprintf(compareUserPrompt,
			a.URL, truncate(a.Markdown, maxContentChars/2),
			b.URL, truncate(b.Markdown, maxContentChars/2)),
		"compare")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// YesNo asks a yes/no question about some content. The first line of the
// reply must start with yes or no; the rest is treated as explanation.
// Returns the stated fallback when the reply cannot be parsed.
func (e *Engine) YesNo(ctx context.Context, system, prompt string, fallback bool) (bool, string, error) {
	resp, err := e.complete(ctx, system, prompt, "classify")
	if err != nil {
		return fallback, "", err
	}

	text := strings.TrimSpace(resp.Text)
	first, rest, _ := strings.Cut(text, "\n")
	explanation := strings.TrimSpace(rest)

	switch {
	case hasAnswerPrefix(first, "yes"):
		return true, explanation, nil
	case hasAnswerPrefix(first, "no"):
		return false, explanation, nil
	default:
		return fallback, text, nil
	}
}

// Prompt runs a free-form prompt and returns the raw text reply.
func (e *Engine) Prompt(ctx context.Context, system, prompt, operation string) (string, error) {
	resp, err := e.complete(ctx, system, prompt, operation)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (e *Engine) complete(ctx context.Context, system, prompt, operation string) (*anthropic.MessageResponse, error) {
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "llm: %s", operation)
	}
	resp.Usage.LogCost(e.cfg.Model, operation)
	return resp, nil
}

func hasAnswerPrefix(line, answer string) bool {
	lower := strings.ToLower(strings.TrimLeft(line, "*_# "))
	return lower == answer || strings.HasPrefix(lower, answer+".") ||
		strings.HasPrefix(lower, answer+",") || strings.HasPrefix(lower, answer+" ") ||
		strings.HasPrefix(lower, answer+":")
}

// UnmarshalLenient unmarshals model output into out, stripping code fences
// and repairing malformed JSON before giving up.
func UnmarshalLenient(text string, out any) error {
	cleaned := StripFences(text)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return eris.Wrap(err, "repair json")
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return eris.Wrap(err, "unmarshal repaired json")
	}
	return nil
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
