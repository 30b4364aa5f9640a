// Package pages renders full HTML documents.
package pages

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"targetgame/internal/viewmodel"
	"targetgame/views/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("pages").ParseFS(templateFS, "templates/*.html"))

type gamePageData struct {
	Title      string
	State      string
	Screen     template.HTML
	HUD        template.HTML
	ClientJSON string
}

// GamePage renders the game document with its initial screen and HUD.
func GamePage(data viewmodel.GamePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		screen, err := renderHTML(ctx, components.Screen(data.Screen))
		if err != nil {
			return fmt.Errorf("render screen: %w", err)
		}
		hud, err := renderHTML(ctx, components.HUD(data.HUD))
		if err != nil {
			return fmt.Errorf("render hud: %w", err)
		}
		client, err := json.Marshal(data.Client)
		if err != nil {
			return fmt.Errorf("encode client settings: %w", err)
		}
		return templates.ExecuteTemplate(w, "game", gamePageData{
			Title:      data.Title,
			State:      data.Screen.State,
			Screen:     screen,
			HUD:        hud,
			ClientJSON: string(client),
		})
	})
}

func renderHTML(ctx context.Context, component templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", err
	}
	// Fragments are produced by html/template and already escaped.
	return template.HTML(buf.String()), nil
}
