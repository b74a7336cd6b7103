package config

// builtinGenres is used when the configuration declares no genres.
func builtinGenres() map[string]GenreConfig {
	return map[string]GenreConfig{
		"abstract": {
			SubGenres: []string{"Minimalist", "Cubist", "Fluid Art", "Surreal Abstract"},
			Themes:    []string{"geometric chaos", "color burst", "dreamscapes"},
			Styles:    []string{"modern", "surreal", "cubist"},
			Palettes:  []string{"neon", "gradient", "monochrome"},
		},
		"game": {
			SubGenres: []string{"Fantasy", "Sci-Fi", "Cyberpunk", "Steampunk", "Pixel Art"},
			Themes:    []string{"fantasy world", "cyberpunk city", "alien planet"},
			Styles:    []string{"3D render", "pixel art", "hand-painted"},
			Palettes:  []string{"vivid", "dark", "neon lights"},
		},
		"movie": {
			SubGenres: []string{"Noir", "Sci-Fi", "Fantasy", "Historical Drama", "Horror"},
			Themes:    []string{"sci-fi epic", "historical drama", "cosmic horror"},
			Styles:    []string{"cinematic", "realistic", "dramatic"},
			Palettes:  []string{"warm tones", "cool tones", "monochrome"},
		},
		"portrait": {
			SubGenres: []string{"Classical", "Digital", "Fantasy Portrait", "Realistic AI Portrait"},
			Themes:    []string{"mystical figure", "regal elegance", "fantasy character"},
			Styles:    []string{"classical", "realistic", "digital painting"},
			Palettes:  []string{"soft pastels", "vivid", "monochrome"},
		},
		"van_gogh": {
			SubGenres: []string{"Starry Night", "Sunflowers", "Wheat Field", "Post-Impressionist Portraits"},
			Themes:    []string{"starry night", "sunflower field", "vibrant countryside"},
			Styles:    []string{"Van Gogh"},
			Palettes:  []string{"warm yellows", "cool blues", "earth tones"},
		},
		"anime": {
			SubGenres: []string{"Shonen", "Shojo", "Cyberpunk Anime", "Fantasy Anime"},
			Themes:    []string{"heroic battles", "romantic landscapes", "cyberpunk future"},
			Styles:    []string{"anime-style", "digital art"},
			Palettes:  []string{"vivid", "soft tones", "high contrast"},
		},
		"photography": {
			SubGenres: []string{"Black-and-White Photography", "HDR Photography", "Minimalist Photography"},
			Themes:    []string{"urban exploration", "nature's beauty", "minimalist design"},
			Styles:    []string{"photorealistic", "cinematic"},
			Palettes:  []string{"monochrome", "soft gradients", "natural colors"},
		},
		"fantasy": {
			SubGenres: []string{"Dark Fantasy", "High Fantasy", "Mythological", "Dystopian Fantasy"},
			Themes:    []string{"mystical realms", "ancient gods", "post-apocalyptic worlds"},
			Styles:    []string{"fantasy painting", "dark surrealism"},
			Palettes:  []string{"vivid", "muted earth tones", "dreamlike"},
		},
	}
}
