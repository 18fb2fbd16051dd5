package handlers

import "net/http"

// suggestedPrompts seeds the prompt box on the create step.
var suggestedPrompts = []string{
	"A serene Japanese garden with cherry blossoms at golden hour",
	"Retro-futuristic cityscape in synthwave colors",
	"Watercolor painting of a fox in a misty autumn forest",
	"Minimalist line art of mountain ranges at sunrise",
	"Vintage botanical illustration of wildflowers",
	"Abstract geometric composition in warm earth tones",
	"Astronaut floating above a swirling nebula, oil on canvas",
	"Mid-century modern poster of a coastal town",
}

func (a *App) SuggestedPrompts(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"prompts": suggestedPrompts})
}
