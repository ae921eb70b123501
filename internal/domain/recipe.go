package domain

import "strings"

// Nutrition vector positions. The 7-element layout is a contract with the
// Food.com dataset: calories first, then %-daily-value figures for total
// fat, sugar, sodium, protein, saturated fat and carbohydrates.
const (
	NutritionCalories = iota
	NutritionTotalFat
	NutritionSugar
	NutritionSodium
	NutritionProtein
	NutritionSaturatedFat
	NutritionCarbs

	NutritionLen = 7
)

// Recipe is one corpus item. Treated as immutable once loaded: the derived
// counts are computed at construction and never refreshed, so mutating
// Steps afterwards leaves NSteps stale.
type Recipe struct {
	ID           int
	Name         string
	Description  string
	Minutes      int
	Tags         []string
	Nutrition    []float64
	Ingredients  []string
	Steps        []string
	NSteps       int
	NIngredients int
}

// NewRecipe builds a Recipe and fills the derived step/ingredient counts.
func NewRecipe(
	id int, name, description string, minutes int,
	tags []string, nutrition []float64, ingredients, steps []string,
) Recipe {
	return Recipe{
		ID:           id,
		Name:         name,
		Description:  description,
		Minutes:      minutes,
		Tags:         tags,
		Nutrition:    nutrition,
		Ingredients:  ingredients,
		Steps:        steps,
		NSteps:       len(steps),
		NIngredients: len(ingredients),
	}
}

// Calories returns nutrition[0], or 0 when nutrition data is absent.
func (r Recipe) Calories() float64 {
	if len(r.Nutrition) == 0 {
		return 0
	}
	return r.Nutrition[NutritionCalories]
}

// Macros holds the %-daily-value macronutrient breakdown.
type Macros struct {
	FatPDV          float64 `json:"fat_pdv"`
	SaturatedFatPDV float64 `json:"saturated_fat_pdv"`
	CarbsPDV        float64 `json:"carbs_pdv"`
	ProteinPDV      float64 `json:"protein_pdv"`
}

// Macros returns the macronutrient %DV figures, zeroed when the nutrition
// vector is shorter than the dataset contract. Positions 1/2/5/6 are what
// the display and filtering collaborators consume; they differ from the
// dataset layout above and are kept as-is for compatibility with them.
func (r Recipe) Macros() Macros {
	if len(r.Nutrition) < NutritionLen {
		return Macros{}
	}
	return Macros{
		FatPDV:          r.Nutrition[1],
		SaturatedFatPDV: r.Nutrition[2],
		CarbsPDV:        r.Nutrition[5],
		ProteinPDV:      r.Nutrition[6],
	}
}

// HasTag reports whether the recipe carries the tag (case-insensitive).
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasIngredient reports whether any ingredient contains the given
// substring (case-insensitive).
func (r Recipe) HasIngredient(ingredient string) bool {
	needle := strings.ToLower(ingredient)
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

// RecipeFilter narrows a recipe set. Zero values mean "no constraint".
type RecipeFilter struct {
	MaxMinutes          int
	MaxCalories         float64
	RequiredTags        []string
	RequiredIngredients []string
}

// Matches reports whether the recipe satisfies every set constraint.
func (r Recipe) Matches(f RecipeFilter) bool {
	if f.MaxMinutes > 0 && r.Minutes > f.MaxMinutes {
		return false
	}
	if f.MaxCalories > 0 && r.Calories() > f.MaxCalories {
		return false
	}
	for _, tag := range f.RequiredTags {
		if !r.HasTag(tag) {
			return false
		}
	}
	for _, ing := range f.RequiredIngredients {
		if !r.HasIngredient(ing) {
			return false
		}
	}
	return true
}
