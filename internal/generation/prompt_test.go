package generation

import (
	"strings"
	"testing"

	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/profile"
)

func testProfile() *profile.UserProfile {
	return &profile.UserProfile{
		Age:            30,
		Gender:         "male",
		Height:         175,
		Weight:         70,
		DietPreference: "non-vegetarian",
		Goal:           "weight loss",
		Budget:         "medium",
		Disease:        "Type 2 diabetes",
	}
}

func testInput(t *testing.T, req Request) Input {
	t.Helper()
	in := Input{Request: req}
	if req.Profile != nil {
		pc, err := profile.Normalize(*req.Profile)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		in.Context = &pc
	}
	return in
}

func TestBuildPromptMealPlanEmbedsDerivedValues(t *testing.T) {
	p, err := BuildPrompt(UseCaseMealPlan, testInput(t, Request{Profile: testProfile()}))
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{
		"BMI: 22.9 (Healthy Weight)",
		"Basal metabolic rate: 1648.75",
		"2308 calories per day",
		"Estimated caloric needs: 1846 calories per day",
		"Special dietary considerations: low glycemic index foods",
		"Cuisine preference: Not specified",
		"preferred cuisine (varied)",
		`"breakfast"`, `"lunch"`, `"dinner"`, `"snacks"`,
		"Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday",
		"Return ONLY the JSON object",
	} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, p.User)
		}
	}
	if strings.Contains(p.User, "{{") {
		t.Fatalf("unreplaced placeholder in prompt:\n%s", p.User)
	}
	if p.System == p.FallbackSystem || !strings.Contains(p.FallbackSystem, "valid JSON") {
		t.Fatalf("expected a JSON-focused fallback system prompt")
	}
}

func TestBuildPromptExercisePlan(t *testing.T) {
	prof := testProfile()
	prof.Goal = "build muscle"
	p, err := BuildPrompt(UseCaseExercisePlan, testInput(t, Request{Profile: prof}))
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{
		"Current fitness level: intermediate",
		"contraindicated by their health condition (Type 2 diabetes)",
		`"warmup"`, `"main"`, `"cooldown"`,
		"Return ONLY the JSON object",
	} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, p.User)
		}
	}

	prof.Disease = "None"
	p, _ = BuildPrompt(UseCaseExercisePlan, testInput(t, Request{Profile: prof}))
	if !strings.Contains(p.User, "Consider their age and fitness level") {
		t.Fatalf("expected generic guidance without a health condition:\n%s", p.User)
	}
}

func TestBuildPromptFoodAnalysis(t *testing.T) {
	p, _ := BuildPrompt(UseCaseFoodAnalysis, testInput(t, Request{Food: "banana"}))
	if !strings.Contains(p.User, `"banana"`) || strings.Contains(p.User, "User dietary info") {
		t.Fatalf("unexpected prompt without profile:\n%s", p.User)
	}
	for _, key := range foodAnalysisKeys {
		if !strings.Contains(p.User, `"`+key+`"`) {
			t.Fatalf("expected field %q in prompt", key)
		}
	}

	p, _ = BuildPrompt(UseCaseFoodAnalysis, testInput(t, Request{Food: "banana", Profile: testProfile()}))
	for _, want := range []string{"User dietary info", "Goal: weight loss", "Daily calorie target: 1846 calories"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, p.User)
		}
	}
}

func TestBuildPromptChatSendsMessageVerbatim(t *testing.T) {
	msg := "Is oatmeal good for breakfast?\nThanks"
	p, _ := BuildPrompt(UseCaseChat, testInput(t, Request{Message: msg, Profile: testProfile()}))
	if p.User != msg {
		t.Fatalf("expected verbatim message, got %q", p.User)
	}
	if !strings.Contains(p.System, "User health profile") || !strings.Contains(p.System, "Health conditions: Type 2 diabetes") {
		t.Fatalf("expected profile in system prompt:\n%s", p.System)
	}
	msgs := p.messages(true)
	if len(msgs) != 2 || msgs[0].Role != llm.RoleSystem || msgs[0].Content != p.System {
		t.Fatalf("expected chat fallback to reuse the system prompt: %+v", msgs)
	}

	p, _ = BuildPrompt(UseCaseChat, testInput(t, Request{Message: msg}))
	if strings.Contains(p.System, "User health profile") {
		t.Fatalf("expected no profile section without a profile")
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	for _, uc := range UseCases {
		req := Request{Profile: testProfile(), Food: "rice", Message: "hello"}
		a, _ := BuildPrompt(uc, testInput(t, req))
		b, _ := BuildPrompt(uc, testInput(t, req))
		if a != b {
			t.Fatalf("%s: expected identical prompts", uc)
		}
	}
}

func TestBuildPromptUnknownUseCase(t *testing.T) {
	if _, err := BuildPrompt("horoscope", Input{}); err == nil {
		t.Fatalf("expected error for unknown use case")
	}
}
