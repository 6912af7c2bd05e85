package food

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/plaintext"
	"github.com/jgoulah/envirolink/pkg/models"
)

const (
	defaultOtherIngredient = "Salt and pepper to taste"
	defaultInstructions    = "Mix all ingredients and cook until done."
)

// ErrNoRecipes is returned when a response contains no usable recipe
var ErrNoRecipes = errors.New("no recipes found in response")

// RecipeParser turns generated text into recipes
type RecipeParser interface {
	Parse(text string, ingredients []string) ([]models.RecipeSuggestion, error)
}

// JSONParser decodes the {"recipes":[...]} object the recipe prompt asks for.
// Text around the outermost braces, such as a code fence, is ignored.
// Recipes that use none of the given ingredients are dropped.
type JSONParser struct{}

func (JSONParser) Parse(text string, ingredients []string) ([]models.RecipeSuggestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object", ErrNoRecipes)
	}

	var payload struct {
		Recipes []models.RecipeSuggestion `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decoding recipes: %w", err)
	}

	var recipes []models.RecipeSuggestion
	for _, r := range payload.Recipes {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		// only the caller's ingredients count as used; anything else the
		// model claims is an extra
		claimed := r.IngredientsUsed
		r.IngredientsUsed = mentioned(strings.Join(claimed, "\n")+"\n"+r.Title+"\n"+r.Instructions, ingredients)
		if len(r.IngredientsUsed) == 0 {
			continue
		}
		for _, c := range claimed {
			if c = strings.TrimSpace(c); c != "" && !mentionsAny(c, r.IngredientsUsed) && !contains(r.OtherIngredients, c) {
				r.OtherIngredients = append(r.OtherIngredients, c)
			}
		}
		recipes = append(recipes, withDefaults(r))
		if len(recipes) == fallback.MaxRecipes {
			break
		}
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

var (
	headingRe     = regexp.MustCompile(`(?i)^\s*(?:\d+\.\s*|recipe\s*\d+\s*:\s*)(.+?)\s*:?\s*$`)
	titleRe       = regexp.MustCompile(`^[\w\s&'-]+$`)
	ingredientsRe = regexp.MustCompile(`(?is)(?:other\s+)?ingredients(?::|\n|\s+needed:)(.*?)(?:instructions|directions|steps|method)\s*:`)
	instructionRe = regexp.MustCompile(`(?is)(?:instructions|directions|steps|method)\s*:(.*)$`)
	bulletRe      = regexp.MustCompile(`^[-•*]\s*`)
	stepRe        = regexp.MustCompile(`^(?:[-•*]|\d+\.?)\s*`)
)

// ProseParser reads free-form recipe text: numbered or "Recipe N:" headings,
// or blank-line separated blocks whose first line is the title.
type ProseParser struct{}

func (ProseParser) Parse(text string, ingredients []string) ([]models.RecipeSuggestion, error) {
	text = plaintext.Normalize(text)

	var recipes []models.RecipeSuggestion
	for _, section := range sections(text) {
		title := strings.TrimSpace(section.title)
		if title == "" || !titleRe.MatchString(title) {
			continue
		}

		used := mentioned(section.body, ingredients)
		r := models.RecipeSuggestion{Title: title, IngredientsUsed: used}

		if m := ingredientsRe.FindStringSubmatch(section.body); m != nil {
			for _, line := range splitItems(m[1]) {
				if !mentionsAny(line, used) {
					r.OtherIngredients = append(r.OtherIngredients, line)
				}
			}
		}
		if m := instructionRe.FindStringSubmatch(section.body); m != nil {
			var steps []string
			for _, line := range strings.Split(m[1], "\n") {
				if line = strings.TrimSpace(stepRe.ReplaceAllString(strings.TrimSpace(line), "")); line != "" {
					steps = append(steps, line)
				}
			}
			r.Instructions = strings.Join(steps, " ")
		}

		recipes = append(recipes, withDefaults(r))
		if len(recipes) == fallback.MaxRecipes {
			break
		}
	}

	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

type section struct {
	title string
	body  string
}

func sections(text string) []section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var out []section
	var cur *section
	prevBlank := true
	for _, line := range lines {
		// numbered steps inside a recipe are not headings; a heading starts a block
		if m := headingRe.FindStringSubmatch(line); m != nil && prevBlank {
			out = append(out, section{title: m[1]})
			cur = &out[len(out)-1]
			prevBlank = false
			continue
		}
		if cur != nil {
			cur.body += line + "\n"
		}
		prevBlank = strings.TrimSpace(line) == ""
	}
	if len(out) > 0 {
		return out
	}

	// no headings: one recipe per paragraph
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		first, rest, _ := strings.Cut(block, "\n")
		out = append(out, section{title: strings.TrimSuffix(strings.TrimSpace(first), ":"), body: rest})
	}
	return out
}

func splitItems(s string) []string {
	var items []string
	for _, line := range strings.Split(s, "\n") {
		line = bulletRe.ReplaceAllString(strings.TrimSpace(line), "")
		for _, item := range strings.Split(line, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// mentioned returns the ingredients that appear in text, case-insensitively
func mentioned(text string, ingredients []string) []string {
	lower := strings.ToLower(text)
	var used []string
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" && strings.Contains(lower, strings.ToLower(ing)) {
			used = append(used, ing)
		}
	}
	return used
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func mentionsAny(line string, ingredients []string) bool {
	return len(mentioned(line, ingredients)) > 0
}

func withDefaults(r models.RecipeSuggestion) models.RecipeSuggestion {
	if r.IngredientsUsed == nil {
		r.IngredientsUsed = []string{}
	}
	if len(r.OtherIngredients) == 0 {
		r.OtherIngredients = []string{defaultOtherIngredient}
	}
	r.Instructions = strings.TrimSpace(r.Instructions)
	if r.Instructions == "" {
		r.Instructions = defaultInstructions
	}
	return r
}
