package catalog

import "github.com/hyperjump/windguide/internal/models"

// DefaultSections returns the tutorial's sections in reading order.
func DefaultSections() []models.Section {
	return []models.Section{
		{ID: "introduction", Label: "Introduction", Icon: "🚀", Badge: "Start"},
		{ID: "typography", Label: "Typography", Icon: "✏️", Badge: "1"},
		{ID: "colors", Label: "Colors", Icon: "🎨", Badge: "2"},
		{ID: "spacing", Label: "Spacing", Icon: "📐", Badge: "3"},
		{ID: "flexbox", Label: "Flexbox", Icon: "🔲", Badge: "4"},
		{ID: "grid", Label: "CSS Grid", Icon: "⊞", Badge: "5"},
		{ID: "sizing", Label: "Sizing", Icon: "↔️", Badge: "6"},
		{ID: "borders", Label: "Borders & Rings", Icon: "⬡", Badge: "7"},
		{ID: "shadows", Label: "Shadows & Filters", Icon: "💧", Badge: "8"},
		{ID: "responsive", Label: "Responsive", Icon: "📱", Badge: "9"},
		{ID: "dark-mode", Label: "Dark Mode", Icon: "🌙", Badge: "10"},
		{ID: "states", Label: "State Variants", Icon: "✨", Badge: "11"},
		{ID: "transitions", Label: "Transitions", Icon: "🎬", Badge: "12"},
		{ID: "customization", Label: "Customization", Icon: "🔧", Badge: "13"},
	}
}

// DefaultHints are the example queries offered before the user types.
func DefaultHints() []string {
	return []string{"flex", "grid", "dark mode", "group-hover", "blur", "@apply", "aspect ratio"}
}
