package fallback

import (
	"strings"

	"github.com/jgoulah/envirolink/pkg/models"
)

// MaxRecipes caps how many recipes are suggested at once
const MaxRecipes = 3

type recipeTemplate struct {
	title            string
	baseIngredients  []string // ingredient keywords or category names
	otherIngredients []string
	instructions     string
}

var recipeTemplates = []recipeTemplate{
	{
		title:            "Quick Stir Fry",
		baseIngredients:  []string{"vegetables", "garlic", "onion"},
		otherIngredients: []string{"soy sauce", "olive oil", "salt", "pepper"},
		instructions:     "Heat oil in a pan. Add garlic and onion, cook until fragrant. Add vegetables and stir fry until tender. Season with soy sauce, salt and pepper to taste.",
	},
	{
		title:            "Simple Pasta",
		baseIngredients:  []string{"pasta", "tomato", "cheese"},
		otherIngredients: []string{"olive oil", "garlic", "salt", "pepper", "herbs"},
		instructions:     "Cook pasta according to package instructions. In a separate pan, heat olive oil and sauté garlic. Add tomatoes and cook for 5 minutes. Toss with pasta, top with cheese, and season to taste.",
	},
	{
		title:            "Hearty Soup",
		baseIngredients:  []string{"vegetables", "potato", "onion"},
		otherIngredients: []string{"vegetable broth", "salt", "pepper", "herbs"},
		instructions:     "In a large pot, sauté onions until translucent. Add vegetables and potatoes, cook for 5 minutes. Add broth, bring to a boil, then simmer until vegetables are tender. Season with salt, pepper, and herbs.",
	},
	{
		title:            "Breakfast Scramble",
		baseIngredients:  []string{"eggs", "cheese", "vegetables"},
		otherIngredients: []string{"butter", "salt", "pepper"},
		instructions:     "Whisk eggs in a bowl. Heat butter in a pan, add vegetables and cook until tender. Pour in eggs, stir gently until scrambled. Top with cheese and season with salt and pepper.",
	},
	{
		title:            "Quick Salad",
		baseIngredients:  []string{"lettuce", "vegetables", "cheese"},
		otherIngredients: []string{"olive oil", "vinegar", "salt", "pepper"},
		instructions:     "Wash and chop lettuce and vegetables. Combine in a bowl. Make a simple dressing with olive oil, vinegar, salt and pepper. Toss salad with dressing and top with cheese.",
	},
}

// ingredientCategories maps ingredient keywords to the category names templates use
var ingredientCategories = []struct {
	name     string
	keywords []string
}{
	{"vegetables", []string{"spinach", "lettuce", "tomato", "carrot", "cucumber", "bell pepper", "onion", "garlic", "potato", "broccoli", "zucchini"}},
	{"proteins", []string{"chicken", "beef", "pork", "tofu", "eggs", "fish", "shrimp"}},
	{"dairy", []string{"milk", "cheese", "yogurt", "butter", "cream"}},
	{"grains", []string{"rice", "pasta", "bread", "quinoa", "oats"}},
	{"fruits", []string{"apple", "banana", "orange", "berries", "lemon"}},
}

// Recipes picks up to MaxRecipes templates that use at least two of the
// given ingredients. When none qualifies it returns one generic recipe that
// uses every ingredient as given.
func Recipes(ingredients []string) []models.RecipeSuggestion {
	var recipes []models.RecipeSuggestion

	for _, tmpl := range recipeTemplates {
		var used []string
		for _, ingredient := range ingredients {
			if tmpl.uses(strings.ToLower(ingredient)) {
				used = append(used, ingredient)
			}
		}

		if len(used) >= 2 {
			recipes = append(recipes, models.RecipeSuggestion{
				Title:            tmpl.title,
				IngredientsUsed:  used,
				OtherIngredients: append([]string(nil), tmpl.otherIngredients...),
				Instructions:     tmpl.instructions,
			})
		}
		if len(recipes) == MaxRecipes {
			break
		}
	}

	if len(recipes) == 0 {
		recipes = append(recipes, models.RecipeSuggestion{
			Title:            "Quick Save Recipe",
			IngredientsUsed:  append([]string{}, ingredients...),
			OtherIngredients: []string{"salt", "pepper", "olive oil"},
			Instructions:     "Combine all the ingredients in a suitable way based on their cooking requirements. Season with salt and pepper to taste. Optionally, add olive oil for more flavor.",
		})
	}

	return recipes
}

func (t recipeTemplate) uses(ingredient string) bool {
	for _, base := range t.baseIngredients {
		if strings.Contains(ingredient, base) {
			return true
		}
	}

	for _, category := range ingredientCategories {
		if containsAny(ingredient, category.keywords) && t.hasBase(category.name) {
			return true
		}
	}
	return false
}

func (t recipeTemplate) hasBase(name string) bool {
	for _, base := range t.baseIngredients {
		if base == name {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
