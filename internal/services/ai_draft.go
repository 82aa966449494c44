package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/newsroom-tools/newsletter-backend/internal/metrics"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
)

const draftSystemPrompt = "You are an assistant that turns short bullet points into a concise internal newsletter."

const (
	NoteNoContributions = "No approved contributions to summarize yet."
	NoteNoCredential    = "OPENAI_API_KEY not set; using deterministic draft."
	NoteAIFailed        = "AI generation failed; using deterministic draft."
)

type DraftItem struct {
	Title    string                    `json:"title"`
	Content  string                    `json:"content"`
	AuthorID uint                      `json:"author_id"`
	Status   models.ContributionStatus `json:"status"`
}

type DraftSection struct {
	Heading string      `json:"heading"`
	Items   []DraftItem `json:"items"`
}

// DraftLayout is the layout written by the AI draft generator.
type DraftLayout struct {
	Title     string         `json:"title"`
	Period    *string        `json:"period"`
	Sections  []DraftSection `json:"sections"`
	Note      string         `json:"note,omitempty"`
	AISummary string         `json:"ai_summary,omitempty"`
}

// DraftGenerator groups approved contributions by type and, when a text
// generator is configured, asks it for a summary. It never fails: any
// problem with the external call degrades to the deterministic grouping.
type DraftGenerator struct {
	client  TextGenerator
	timeout time.Duration
}

// NewDraftGenerator accepts a nil client, meaning no credential is configured.
func NewDraftGenerator(client TextGenerator, timeout time.Duration) *DraftGenerator {
	return &DraftGenerator{client: client, timeout: timeout}
}

func (g *DraftGenerator) Generate(ctx context.Context, newsletter *models.Newsletter, contributions []models.Contribution) DraftLayout {
	draft := DraftLayout{
		Title:    newsletter.Title,
		Period:   newsletter.Period,
		Sections: groupByType(contributions),
	}

	if len(contributions) == 0 {
		draft.Note = NoteNoContributions
		metrics.DraftGenerations.WithLabelValues(metrics.DraftEmpty).Inc()
		return draft
	}

	if g.client == nil {
		draft.Note = NoteNoCredential
		metrics.DraftGenerations.WithLabelValues(metrics.DraftUnconfigured).Inc()
		return draft
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	summary, err := g.client.Complete(ctx, draftSystemPrompt, draftPrompt(newsletter, contributions))
	if err != nil {
		slog.Warn("ai draft generation failed, using deterministic draft",
			"newsletter_id", newsletter.ID, "error", err)
		draft.Note = NoteAIFailed
		metrics.DraftGenerations.WithLabelValues(metrics.DraftFallback).Inc()
		return draft
	}

	draft.AISummary = summary
	metrics.DraftGenerations.WithLabelValues(metrics.DraftAI).Inc()
	return draft
}

// groupByType keeps types in the order they are first encountered.
func groupByType(contributions []models.Contribution) []DraftSection {
	sections := make([]DraftSection, 0)
	index := make(map[models.ContributionType]int)
	for _, c := range contributions {
		i, ok := index[c.Type]
		if !ok {
			i = len(sections)
			index[c.Type] = i
			sections = append(sections, DraftSection{Heading: typeLabel(c.Type)})
		}
		sections[i].Items = append(sections[i].Items, DraftItem{
			Title:    c.Title,
			Content:  c.Content,
			AuthorID: c.UserID,
			Status:   c.Status,
		})
	}
	return sections
}

func draftPrompt(newsletter *models.Newsletter, contributions []models.Contribution) string {
	period := "unspecified"
	if newsletter.Period != nil && *newsletter.Period != "" {
		period = *newsletter.Period
	}

	var b strings.Builder
	b.WriteString("Write a concise draft for an internal newsletter. ")
	fmt.Fprintf(&b, "Title: %s. Period: %s.\n", newsletter.Title, period)
	b.WriteString("Use a simple structure (success/fail/info sections) and a factual tone.\n")
	b.WriteString("Points:\n")
	for i, c := range contributions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- [%s] %s: %s", c.Type, c.Title, c.Content)
	}
	return b.String()
}
