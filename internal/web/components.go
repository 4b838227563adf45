package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/a-h/templ"

	"recipe_app_echo/internal/models"
)

// RatingBadge renders a recipe's mean rating as stars plus a label
func RatingBadge(rating float64, count int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		full := int(math.Round(rating))
		full = max(0, min(full, models.MaxRating))

		label := "No ratings yet"
		switch {
		case count == 1:
			label = fmt.Sprintf("%.1f (1 rating)", rating)
		case count > 1:
			label = fmt.Sprintf("%.1f (%d ratings)", rating, count)
		}

		_, err := fmt.Fprintf(w, `<p class="rating"><span class="stars" aria-hidden="true">%s%s</span> %s</p>`,
			strings.Repeat("★", full),
			strings.Repeat("☆", models.MaxRating-full),
			templ.EscapeString(label),
		)
		return err
	})
}

// Fragment renders c for embedding in an html/template page
func Fragment(ctx context.Context, c templ.Component) (template.HTML, error) {
	return templ.ToGoHTML(ctx, c)
}
