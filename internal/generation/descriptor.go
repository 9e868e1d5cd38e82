package generation

import (
	"strings"

	"nutricoach-backend/internal/shared/util"
)

const (
	maxFoodRunes    = 200
	maxMessageRunes = 4000
	maxProfileRunes = 120
)

// Descriptor is the per-use-case table entry driving Pipeline.Run.
type Descriptor struct {
	UseCase UseCase
	// RequireProfile makes a missing or invalid profile a validation error.
	// Otherwise an unusable profile is dropped and the request proceeds.
	RequireProfile bool
	Validate       func(Request) error
	Prompt         func(Input) Prompt
	Decode         func(raw string) (any, error)
	Static         func(Input, StaticVariant) any
	// LightModel sends the primary call to the lighter primary model when one is configured.
	LightModel        bool
	FallbackMaxTokens int
	Cacheable         bool
}

var descriptors = map[UseCase]Descriptor{
	UseCaseFoodAnalysis: {
		UseCase:           UseCaseFoodAnalysis,
		Validate:          requireText(func(r Request) string { return r.Food }, "Food item is required"),
		Prompt:            renderFoodAnalysis,
		Decode:            decodeFoodAnalysis,
		Static:            staticFoodAnalysis,
		LightModel:        true,
		FallbackMaxTokens: 1000,
		Cacheable:         true,
	},
	UseCaseMealPlan: {
		UseCase:           UseCaseMealPlan,
		RequireProfile:    true,
		Validate:          requireProfile,
		Prompt:            renderMealPlan,
		Decode:            decodeMealPlan,
		Static:            staticMealPlan,
		FallbackMaxTokens: 3000,
		Cacheable:         true,
	},
	UseCaseExercisePlan: {
		UseCase:           UseCaseExercisePlan,
		RequireProfile:    true,
		Validate:          requireProfile,
		Prompt:            renderExercisePlan,
		Decode:            decodeExercisePlan,
		Static:            staticExercisePlan,
		FallbackMaxTokens: 2000,
		Cacheable:         true,
	},
	UseCaseChat: {
		UseCase:           UseCaseChat,
		Validate:          requireText(func(r Request) string { return r.Message }, "Message is required"),
		Prompt:            renderChat,
		Decode:            decodeChat,
		Static:            staticChat,
		LightModel:        true,
		FallbackMaxTokens: 1000,
	},
}

// Lookup returns the descriptor for uc.
func Lookup(uc UseCase) (Descriptor, bool) {
	d, ok := descriptors[uc]
	return d, ok
}

func requireText(field func(Request) string, message string) func(Request) error {
	return func(r Request) error {
		if strings.TrimSpace(field(r)) == "" {
			return &ValidationError{Message: message}
		}
		return nil
	}
}

func requireProfile(r Request) error {
	if r.Profile == nil {
		return &ValidationError{Message: "User profile is required"}
	}
	return nil
}

// sanitizeRequest trims free text and strips control characters before it
// reaches a prompt.
func sanitizeRequest(r Request) Request {
	out := Request{
		Food:    util.SanitizeText(r.Food, maxFoodRunes),
		Message: util.SanitizeText(r.Message, maxMessageRunes),
	}
	if r.Profile != nil {
		p := *r.Profile
		p.Gender = util.SanitizeText(p.Gender, maxProfileRunes)
		p.DietPreference = util.SanitizeText(p.DietPreference, maxProfileRunes)
		p.Goal = util.SanitizeText(p.Goal, maxProfileRunes)
		p.Budget = util.SanitizeText(p.Budget, maxProfileRunes)
		p.Disease = util.SanitizeText(p.Disease, maxProfileRunes)
		p.Cuisine = util.SanitizeText(p.Cuisine, maxProfileRunes)
		p.FitnessLevel = util.SanitizeText(p.FitnessLevel, maxProfileRunes)
		out.Profile = &p
	}
	return out
}
