package generation

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/profile"
)

var (
	//go:embed prompts/meal_plan.txt
	mealPlanTemplate string
	//go:embed prompts/exercise_plan.txt
	exercisePlanTemplate string
	//go:embed prompts/food_analysis.txt
	foodAnalysisTemplate string
	//go:embed prompts/chat_system.txt
	chatSystemTemplate string
)

const (
	systemMealPlan         = "You are a professional nutritionist and dietitian specialized in creating personalized meal plans backed by scientific research. You create detailed, evidence-based nutrition plans tailored to individual needs, preferences, and health goals."
	systemMealPlanFallback = "You are a professional nutritionist and dietitian specialized in creating personalized meal plans backed by scientific research. You always respond with valid JSON."
	systemExercise         = "You are a professional fitness trainer and exercise physiologist with expertise in creating personalized exercise plans. You create detailed, scientifically-based workout routines tailored to individual needs and goals."
	systemExerciseFallback = "You are a professional fitness trainer and exercise physiologist with expertise in creating personalized exercise plans. You always respond with valid JSON."
	systemFoodAnalysis     = "You are a professional nutritionist specialized in providing detailed food analysis."
	systemFoodFallback     = "You are a professional nutritionist specialized in providing detailed food analysis. You always respond with valid JSON."
)

// Input is the validated request plus the derived profile context, which is
// nil when no usable profile was supplied.
type Input struct {
	Request Request
	Context *profile.Context
}

// Prompt is the rendered instruction for one request.
type Prompt struct {
	System         string
	FallbackSystem string
	User           string
}

func (p Prompt) messages(fallback bool) []llm.Message {
	system := p.System
	if fallback && p.FallbackSystem != "" {
		system = p.FallbackSystem
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: p.User},
	}
}

// hashParts are the prompt fields that identify it for caching and history.
func (p Prompt) hashParts() []string {
	return []string{p.System, p.User}
}

// BuildPrompt renders the prompt for a use case. It is pure: identical input
// always yields an identical prompt.
func BuildPrompt(uc UseCase, in Input) (Prompt, error) {
	desc, ok := Lookup(uc)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown use case %q", uc)
	}
	return desc.Prompt(in), nil
}

func renderMealPlan(in Input) Prompt {
	ctx := contextOrZero(in)
	p := ctx.Profile

	considerations := ""
	if len(ctx.HealthConsiderations) > 0 {
		considerations = "- Special dietary considerations: " + strings.Join(ctx.HealthConsiderations, ", ") + "\n"
	}

	r := strings.NewReplacer(
		"{{AGE}}", strconv.Itoa(p.Age),
		"{{GENDER}}", orDefault(p.Gender, "Not specified"),
		"{{HEIGHT}}", formatNumber(p.Height),
		"{{WEIGHT}}", formatNumber(p.Weight),
		"{{BMI}}", formatNumber(ctx.BMI),
		"{{BMI_STATUS}}", ctx.BMIStatus,
		"{{BMR}}", formatNumber(ctx.BMR),
		"{{TDEE}}", strconv.Itoa(ctx.TDEE),
		"{{CALORIE_TARGET}}", strconv.Itoa(ctx.CalorieTarget),
		"{{DIET}}", orDefault(p.DietPreference, "Not specified"),
		"{{GOAL}}", orDefault(p.Goal, "Not specified"),
		"{{BUDGET}}", orDefault(p.Budget, "Not specified"),
		"{{CUISINE}}", orDefault(p.Cuisine, "Not specified"),
		"{{CUISINE_OR_VARIED}}", orDefault(p.Cuisine, "varied"),
		"{{DISEASE}}", orDefault(p.Disease, "None"),
		"{{CONSIDERATIONS}}", considerations,
	)
	return Prompt{
		System:         systemMealPlan,
		FallbackSystem: systemMealPlanFallback,
		User:           strings.TrimSpace(r.Replace(mealPlanTemplate)),
	}
}

func renderExercisePlan(in Input) Prompt {
	ctx := contextOrZero(in)
	p := ctx.Profile

	guidance := "Consider their age and fitness level when designing exercises"
	if profile.HasHealthCondition(p) {
		guidance = fmt.Sprintf("Provide specific modifications for exercises that might be contraindicated by their health condition (%s)", p.Disease)
	}

	r := strings.NewReplacer(
		"{{AGE}}", strconv.Itoa(p.Age),
		"{{GENDER}}", orDefault(p.Gender, "Not specified"),
		"{{HEIGHT}}", formatNumber(p.Height),
		"{{WEIGHT}}", formatNumber(p.Weight),
		"{{BMI}}", formatNumber(ctx.BMI),
		"{{BMI_STATUS}}", ctx.BMIStatus,
		"{{TARGET_WEIGHT}}", formatNumber(ctx.TargetWeight),
		"{{TDEE}}", strconv.Itoa(ctx.TDEE),
		"{{GOAL}}", orDefault(p.Goal, "Not specified"),
		"{{DISEASE}}", orDefault(p.Disease, "None"),
		"{{FITNESS_LEVEL}}", ctx.FitnessLevel,
		"{{CONDITION_GUIDANCE}}", guidance,
	)
	return Prompt{
		System:         systemExercise,
		FallbackSystem: systemExerciseFallback,
		User:           strings.TrimSpace(r.Replace(exercisePlanTemplate)),
	}
}

func renderFoodAnalysis(in Input) Prompt {
	dietContext := ""
	if p := in.Request.Profile; p != nil {
		var b strings.Builder
		b.WriteString("\nUser dietary info:\n")
		fmt.Fprintf(&b, "- Goal: %s\n", orDefault(p.Goal, "Not specified"))
		fmt.Fprintf(&b, "- Diet preference: %s\n", orDefault(p.DietPreference, "Not specified"))
		fmt.Fprintf(&b, "- Weight: %s kg\n", positiveOrDefault(p.Weight, "Not specified"))
		fmt.Fprintf(&b, "- Health conditions: %s\n", orDefault(p.Disease, "None"))
		if ctx := in.Context; ctx != nil {
			fmt.Fprintf(&b, "- BMI: %s\n", formatNumber(ctx.BMI))
			fmt.Fprintf(&b, "- Daily calorie target: %d calories\n", ctx.CalorieTarget)
			if len(ctx.HealthConsiderations) > 0 {
				fmt.Fprintf(&b, "- Special dietary considerations: %s\n", strings.Join(ctx.HealthConsiderations, ", "))
			}
		}
		dietContext = b.String()
	}

	r := strings.NewReplacer(
		"{{FOOD}}", in.Request.Food,
		"{{DIET_CONTEXT}}", dietContext,
	)
	return Prompt{
		System:         systemFoodAnalysis,
		FallbackSystem: systemFoodFallback,
		User:           strings.TrimSpace(r.Replace(foodAnalysisTemplate)),
	}
}

// Chat sends the caller's message verbatim; the profile goes in the system prompt.
func renderChat(in Input) Prompt {
	userContext := ""
	if p := in.Request.Profile; p != nil {
		var b strings.Builder
		b.WriteString("\nUser health profile:\n")
		fmt.Fprintf(&b, "- Age: %s\n", positiveOrDefault(float64(p.Age), "Not specified"))
		fmt.Fprintf(&b, "- Gender: %s\n", orDefault(p.Gender, "Not specified"))
		fmt.Fprintf(&b, "- Height: %s cm\n", positiveOrDefault(p.Height, "Not specified"))
		fmt.Fprintf(&b, "- Weight: %s kg\n", positiveOrDefault(p.Weight, "Not specified"))
		fmt.Fprintf(&b, "- Diet preference: %s\n", orDefault(p.DietPreference, "Not specified"))
		fmt.Fprintf(&b, "- Goal: %s\n", orDefault(p.Goal, "Not specified"))
		fmt.Fprintf(&b, "- Health conditions: %s\n", orDefault(p.Disease, "None"))
		if ctx := in.Context; ctx != nil {
			fmt.Fprintf(&b, "- BMI: %s (%s)\n", formatNumber(ctx.BMI), ctx.BMIStatus)
			fmt.Fprintf(&b, "- Daily calorie target: %d calories\n", ctx.CalorieTarget)
		}
		userContext = b.String()
	}

	r := strings.NewReplacer("{{USER_CONTEXT}}", userContext)
	return Prompt{
		System: strings.TrimSpace(r.Replace(chatSystemTemplate)),
		User:   in.Request.Message,
	}
}

func contextOrZero(in Input) profile.Context {
	if in.Context == nil {
		return profile.Context{}
	}
	return *in.Context
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func positiveOrDefault(v float64, def string) string {
	if v > 0 {
		return formatNumber(v)
	}
	return def
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
