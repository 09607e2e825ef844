package presentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"anivise/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// EmptyMessage is shown when a result has no records
const EmptyMessage = "No results found."

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Rendered is the full presentation of one result
type Rendered struct {
	View  View   `json:"view"`
	Cards []Card `json:"cards"`
	HTML  string `json:"-"`
}

// Render selects the view, projects cards and renders HTML for a result
func Render(intent models.Intent, data []json.RawMessage) (Rendered, error) {
	view := ViewFor(intent)
	cards := Project(view, data)

	html, err := RenderHTML(intent, view, cards)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{View: view, Cards: cards, HTML: html}, nil
}

// RenderHTML converts cards to an HTML fragment via Markdown
func RenderHTML(intent models.Intent, view View, cards []Card) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(intent, view, cards)), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown lays out cards as a Markdown document
func RenderMarkdown(intent models.Intent, view View, cards []Card) string {
	if view == ViewNone {
		return escape("No renderer available for intent: "+string(intent)) + "\n"
	}
	if len(cards) == 0 {
		return EmptyMessage + "\n"
	}

	var b strings.Builder
	switch view {
	case ViewRatingCard:
		c := cards[0]
		fmt.Fprintf(&b, "## %s\n\n", escape(c.Title))
		fmt.Fprintf(&b, "**%s**\n\n", escape(c.Score))
		fmt.Fprintf(&b, "%s\n", escape(c.Subtitle))

	case ViewEpisodeList:
		for _, c := range cards {
			fmt.Fprintf(&b, "- **%s**  \n  %s\n", escape(c.Title), escape(c.Subtitle))
		}

	default:
		for _, c := range cards {
			fmt.Fprintf(&b, "### %s\n\n", escape(c.Title))
			if c.Image != "" {
				fmt.Fprintf(&b, "![%s](<%s>)\n\n", escape(c.Title), strings.ReplaceAll(c.Image, ">", "%3E"))
			}
			line := []string{}
			if c.Score != "" {
				line = append(line, "**"+escape(c.Score)+"**")
			}
			if c.Subtitle != "" {
				line = append(line, "*"+escape(c.Subtitle)+"*")
			}
			if len(line) > 0 {
				fmt.Fprintf(&b, "%s\n\n", strings.Join(line, " · "))
			}
			if c.Body != "" {
				fmt.Fprintf(&b, "%s\n\n", escape(c.Body))
			}
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"~", `\~`,
	"\r", "",
	"\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
