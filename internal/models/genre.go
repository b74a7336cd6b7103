// internal/models/genre.go
package models

import (
	"fmt"
	"strings"
)

// Genre is a content category with its own option pools.
type Genre struct {
	Name      string   `json:"name"`
	Enabled   bool     `json:"enabled"`
	SubGenres []string `json:"subGenres,omitempty"`
	Styles    []string `json:"styles"`
	Themes    []string `json:"themes"`
	Palettes  []string `json:"palettes"`
}

// Validate checks that an enabled genre has something to pick from.
// Sub-genres are optional.
func (g Genre) Validate() error {
	if !g.Enabled {
		return nil
	}
	var empty []string
	if len(g.Styles) == 0 {
		empty = append(empty, "styles")
	}
	if len(g.Themes) == 0 {
		empty = append(empty, "themes")
	}
	if len(g.Palettes) == 0 {
		empty = append(empty, "palettes")
	}
	if len(empty) > 0 {
		return fmt.Errorf("genre %q is enabled but has empty %s", g.Name, strings.Join(empty, ", "))
	}
	return nil
}

// DisplayName turns "van_gogh" into "Van Gogh".
func (g Genre) DisplayName() string {
	return DisplayGenre(g.Name)
}

// DisplayGenre capitalizes each underscore separated word of a genre key.
func DisplayGenre(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
