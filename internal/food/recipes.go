package food

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/pipeline"
	"github.com/jgoulah/envirolink/pkg/models"
)

// RecipeGenerator asks the generator for recipes built around the given
// ingredients and falls back to local templates when that fails
type RecipeGenerator struct {
	pipeline *pipeline.Pipeline
	parsers  []RecipeParser
	log      zerolog.Logger
}

// NewRecipeGenerator creates a generator. Without parsers it tries the JSON
// shape first, then free-form prose.
func NewRecipeGenerator(p *pipeline.Pipeline, log zerolog.Logger, parsers ...RecipeParser) *RecipeGenerator {
	if len(parsers) == 0 {
		parsers = []RecipeParser{JSONParser{}, ProseParser{}}
	}
	return &RecipeGenerator{pipeline: p, parsers: parsers, log: log}
}

// Generate returns between one and three recipes. It never fails.
func (g *RecipeGenerator) Generate(ctx context.Context, ingredients []string) []models.RecipeSuggestion {
	var cleaned []string
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return fallback.Recipes(nil)
	}

	text, err := g.pipeline.Complete(ctx, pipeline.Job{
		Name:      "recipes",
		System:    ai.RecipeSystemPrompt,
		Query:     ai.RecipeRequest(cleaned),
		Options:   ai.RecipeOptions,
		Cacheable: true,
		Validate: func(text string) error {
			_, err := g.parse(text, cleaned)
			return err
		},
	})
	if err != nil {
		g.log.Warn().Err(err).Str("kind", ai.KindOf(err)).Msg("recipe generation failed, using templates")
		return fallback.Recipes(cleaned)
	}

	recipes, err := g.parse(text, cleaned)
	if err != nil {
		g.log.Warn().Err(err).Msg("no recipes in generated response, using templates")
		return fallback.Recipes(cleaned)
	}
	return recipes
}

// parse returns the first successful parser's recipes
func (g *RecipeGenerator) parse(text string, ingredients []string) ([]models.RecipeSuggestion, error) {
	err := ErrNoRecipes
	for _, parser := range g.parsers {
		var recipes []models.RecipeSuggestion
		recipes, err = parser.Parse(text, ingredients)
		if err == nil {
			return recipes, nil
		}
		g.log.Debug().Err(err).Msgf("%T could not parse response", parser)
	}
	return nil, err
}
