// Package components renders the HTML fragments swapped into the game page.
package components

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"targetgame/internal/viewmodel"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("components").ParseFS(templateFS, "templates/*.html"))

// Screen renders the active screen (menus, pause overlay, game over).
func Screen(data viewmodel.Screen) templ.Component {
	return fragment("screen", data)
}

// HUD renders the live counters.
func HUD(data viewmodel.HUD) templ.Component {
	return fragment("hud", data)
}

func fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}
