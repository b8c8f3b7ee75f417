// Package summary generates short synopses of a book's reviews with a hosted language model.
package summary

import (
	"context"
	"errors"
	"strings"
)

// Summarizer condenses review texts into a single paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, reviews []string) (string, error)
}

// ErrNotConfigured is returned when no model credentials are available.
var ErrNotConfigured = errors.New("summary: summarizer not configured")

// Disabled is a Summarizer that always fails with ErrNotConfigured.
type Disabled struct{}

// Summarize implements Summarizer.
func (Disabled) Summarize(context.Context, []string) (string, error) {
	return "", ErrNotConfigured
}

const systemInstruction = "Please act as a literary critic. Keep the reviews to the point."

// buildPrompt asks for a 3-4 sentence paragraph synthesizing the reviews.
func buildPrompt(reviews []string) string {
	var b strings.Builder
	b.WriteString("I will provide you with a list of user reviews for a book.\n")
	b.WriteString("Your task is to synthesize these opinions into a single, concise paragraph (3-4 sentences)\n")
	b.WriteString("that summarizes the overall sentiment. Do not use bullet points.\n\n")
	b.WriteString("Reviews:\n---\n")
	for _, r := range reviews {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString("---\n")
	return b.String()
}
