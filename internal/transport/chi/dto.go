package chi

import "github.com/forkcast/forkcast/internal/domain"

// recipeDTO is the wire representation of a recipe.
type recipeDTO struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Minutes      int           `json:"minutes"`
	Tags         []string      `json:"tags"`
	Nutrition    []float64     `json:"nutrition"`
	Ingredients  []string      `json:"ingredients"`
	Steps        []string      `json:"steps"`
	NSteps       int           `json:"n_steps"`
	NIngredients int           `json:"n_ingredients"`
	Calories     float64       `json:"calories"`
	Macros       domain.Macros `json:"macros"`
}

func recipeToDTO(r domain.Recipe) recipeDTO {
	return recipeDTO{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Minutes:      r.Minutes,
		Tags:         r.Tags,
		Nutrition:    r.Nutrition,
		Ingredients:  r.Ingredients,
		Steps:        r.Steps,
		NSteps:       r.NSteps,
		NIngredients: r.NIngredients,
		Calories:     r.Calories(),
		Macros:       r.Macros(),
	}
}

func recipesToDTO(recipes []domain.Recipe) []recipeDTO {
	out := make([]recipeDTO, len(recipes))
	for i, r := range recipes {
		out[i] = recipeToDTO(r)
	}
	return out
}
