// Package generation runs the graduated-fallback pipeline behind the food
// analysis, meal plan, exercise plan and health chat endpoints.
package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nutricoach-backend/internal/profile"
)

// UseCase names one generation endpoint.
type UseCase string

const (
	UseCaseFoodAnalysis UseCase = "food_analysis"
	UseCaseMealPlan     UseCase = "meal_plan"
	UseCaseExercisePlan UseCase = "exercise_plan"
	UseCaseChat         UseCase = "chat"
)

// UseCases lists every use case in a stable order.
var UseCases = []UseCase{UseCaseFoodAnalysis, UseCaseMealPlan, UseCaseExercisePlan, UseCaseChat}

// Tier records which stage produced a result.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
	TierStatic   Tier = "static"
)

// Request is the body accepted by every generation endpoint. Only the fields
// relevant to the use case are read.
type Request struct {
	Profile *profile.UserProfile `json:"profile"`
	Food    string               `json:"food"`
	Message string               `json:"message"`
}

// Result is a completed pipeline run.
type Result struct {
	UseCase    UseCase
	Tier       Tier
	Payload    any
	Cached     bool
	PromptHash string
	Path       []State
	Duration   time.Duration
}

// Calories keeps the provider's free-text form ("240 kcal"). A bare number is
// accepted and given a kcal suffix.
type Calories string

func (c *Calories) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Calories(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("calories: expected string or number, got %s", data)
	}
	*c = Calories(string(data) + " kcal")
	return nil
}

// FoodAnalysis is the food analysis payload.
type FoodAnalysis struct {
	Calories       Calories `json:"calories"`
	Nutrients      []string `json:"nutrients"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Recommendation string   `json:"recommendation"`
}

// DayMeals is one day of a meal plan.
type DayMeals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snacks    string `json:"snacks,omitempty"`
}

// DayExercises is one day of an exercise plan.
type DayExercises struct {
	Warmup   string `json:"warmup"`
	Main     string `json:"main"`
	Cooldown string `json:"cooldown"`
}

// Weekdays in calendar order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Week holds one value per weekday, indexed Monday=0 through Sunday=6.
// It marshals as a JSON object with keys in calendar order.
type Week[T any] [7]T

type (
	WeeklyMealPlan     = Week[DayMeals]
	WeeklyExercisePlan = Week[DayExercises]
)

func (w Week[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range Weekdays {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(day)
		val, err := json.Marshal(w[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", day, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON matches weekday keys case-insensitively. Unknown keys are
// ignored and missing days stay zero.
func (w *Week[T]) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Week[T]
	for key, val := range raw {
		idx := weekdayIndex(key)
		if idx < 0 {
			continue
		}
		if err := json.Unmarshal(val, &out[idx]); err != nil {
			return fmt.Errorf("%s: %w", Weekdays[idx], err)
		}
	}
	*w = out
	return nil
}

func weekdayIndex(key string) int {
	key = strings.TrimSpace(key)
	for i, day := range Weekdays {
		if strings.EqualFold(key, day) {
			return i
		}
	}
	return -1
}

// ChatReply is the health chat payload.
type ChatReply struct {
	Content string `json:"content"`
}
