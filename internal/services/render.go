package services

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RenderSection is one entry of the layout written by the deterministic
// renderer.
type RenderSection struct {
	Type     models.ContributionType `json:"type"`
	Title    string                  `json:"title"`
	AuthorID uint                    `json:"author_id"`
	Content  string                  `json:"content"`
}

type RenderLayout struct {
	Sections []RenderSection `json:"sections"`
}

var documentTemplate = template.Must(template.New("newsletter").Parse(
	`<article><h1>{{.Title}}</h1>` +
		`{{range .Sections}}<section><h3>{{.Label}} — {{.Title}}</h3><p>{{.Content}}</p></section>{{end}}` +
		`</article>`,
))

type documentSection struct {
	Label   string
	Title   string
	Content string
}

// Renderer flattens approved contributions into a publishable HTML document.
// Contribution text is escaped, never sanitized, so it is published verbatim.
type Renderer struct {
	ugc *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{ugc: bluemonday.UGCPolicy()}
}

// Render builds the document and its section list. Contributions are taken
// in the order given; callers pass them ordered by id.
func (r *Renderer) Render(newsletter *models.Newsletter, contributions []models.Contribution) (string, RenderLayout, error) {
	layout := RenderLayout{Sections: make([]RenderSection, 0, len(contributions))}
	sections := make([]documentSection, 0, len(contributions))

	for _, c := range contributions {
		layout.Sections = append(layout.Sections, RenderSection{
			Type:     c.Type,
			Title:    c.Title,
			AuthorID: c.UserID,
			Content:  c.Content,
		})
		sections = append(sections, documentSection{Label: typeLabel(c.Type), Title: c.Title, Content: c.Content})
	}

	var b strings.Builder
	err := documentTemplate.Execute(&b, struct {
		Title    string
		Sections []documentSection
	}{newsletter.Title, sections})
	if err != nil {
		return "", layout, fmt.Errorf("failed to render newsletter: %w", err)
	}
	return b.String(), layout, nil
}

// SanitizeHTML cleans a hand-edited document before it is stored.
func (r *Renderer) SanitizeHTML(html string) string {
	return r.ugc.Sanitize(html)
}

// typeLabel turns SUCCESS into Success.
func typeLabel(t models.ContributionType) string {
	return cases.Title(language.Und).String(string(t))
}
