package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

var foodAnalysisKeys = []string{"calories", "nutrients", "pros", "cons", "recommendation"}

func decodeFoodAnalysis(raw string) (any, error) {
	var keys map[string]json.RawMessage
	if err := extractInto(raw, &keys); err != nil {
		return nil, err
	}
	for _, k := range foodAnalysisKeys {
		v, ok := keys[k]
		if !ok || string(v) == "null" {
			return nil, schemaError(raw, "missing %q", k)
		}
	}

	var out FoodAnalysis
	if err := extractInto(raw, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(out.Calories)) == "" {
		return nil, schemaError(raw, "calories is empty")
	}
	if strings.TrimSpace(out.Recommendation) == "" {
		return nil, schemaError(raw, "recommendation is empty")
	}
	return out, nil
}

func decodeMealPlan(raw string) (any, error) {
	var plan WeeklyMealPlan
	if err := extractInto(raw, &plan); err != nil {
		return nil, err
	}
	for i, day := range plan {
		if missing := firstBlank(
			"breakfast", day.Breakfast,
			"lunch", day.Lunch,
			"dinner", day.Dinner,
		); missing != "" {
			return nil, schemaError(raw, "%s: %s is empty", Weekdays[i], missing)
		}
	}
	return plan, nil
}

func decodeExercisePlan(raw string) (any, error) {
	var plan WeeklyExercisePlan
	if err := extractInto(raw, &plan); err != nil {
		return nil, err
	}
	for i, day := range plan {
		if missing := firstBlank(
			"warmup", day.Warmup,
			"main", day.Main,
			"cooldown", day.Cooldown,
		); missing != "" {
			return nil, schemaError(raw, "%s: %s is empty", Weekdays[i], missing)
		}
	}
	return plan, nil
}

// Chat replies are free text and are returned verbatim.
func decodeChat(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Raw: raw, Err: errNoContent}
	}
	return ChatReply{Content: raw}, nil
}

// firstBlank takes name/value pairs and returns the first name whose value is blank.
func firstBlank(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return pairs[i]
		}
	}
	return ""
}

func schemaError(raw, format string, args ...any) error {
	return &ParseError{Raw: raw, Err: fmt.Errorf("schema: "+format, args...)}
}
