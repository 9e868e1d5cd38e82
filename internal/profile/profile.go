// Package profile holds the user profile submitted with every generation
// request and the body metrics derived from it.
package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Gender values accepted from the front end.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Diet preferences accepted from the front end.
const (
	DietVegetarian    = "vegetarian"
	DietNonVegetarian = "non-vegetarian"
	DietVegan         = "vegan"
)

// Goals accepted from the front end. Matching elsewhere is substring based,
// so free-text goals such as "build muscle" still work.
const (
	GoalWeightLoss  = "weight loss"
	GoalWeightGain  = "weight gain"
	GoalMaintenance = "maintenance"
)

// Budget levels accepted from the front end.
const (
	BudgetLow    = "low"
	BudgetMedium = "medium"
	BudgetHigh   = "high"
)

const activityMultiplier = 1.4

// ErrInvalidProfile is wrapped by every Normalize validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// UserProfile is the caller-owned profile sent with a request.
type UserProfile struct {
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	DietPreference string  `json:"dietPreference"`
	Goal           string  `json:"goal"`
	Budget         string  `json:"budget,omitempty"`
	Disease        string  `json:"disease,omitempty"`
	Cuisine        string  `json:"cuisine,omitempty"`
	FitnessLevel   string  `json:"fitnessLevel,omitempty"`
}

// Context is the normalized view of a profile used to build prompts.
type Context struct {
	Profile              UserProfile `json:"profile"`
	BMI                  float64     `json:"bmi"`
	BMIStatus            string      `json:"bmiStatus"`
	BMR                  float64     `json:"bmr"`
	TDEE                 int         `json:"tdee"`
	CalorieTarget        int         `json:"calorieTarget"`
	TargetWeight         float64     `json:"targetWeight"`
	FitnessLevel         string      `json:"fitnessLevel"`
	HealthConsiderations []string    `json:"healthConsiderations"`
}

type healthRule struct {
	keyword        string
	considerations []string
}

// First matching keyword wins.
var healthRules = []healthRule{
	{keyword: "diabetes", considerations: []string{"low glycemic index foods", "consistent carbohydrate intake throughout the day", "fiber-rich meals"}},
	{keyword: "hypertension", considerations: []string{"low sodium options", "DASH diet principles", "potassium-rich foods"}},
	{keyword: "heart", considerations: []string{"heart-healthy omega-3 sources", "limited saturated fat", "low sodium options"}},
}

// Normalize validates the numeric fields of p and derives body metrics.
func Normalize(p UserProfile) (Context, error) {
	if p.Age <= 0 {
		return Context{}, fmt.Errorf("%w: age must be a positive number", ErrInvalidProfile)
	}
	if !(p.Height > 0) || math.IsInf(p.Height, 0) {
		return Context{}, fmt.Errorf("%w: height must be a positive number of centimeters", ErrInvalidProfile)
	}
	if !(p.Weight > 0) || math.IsInf(p.Weight, 0) {
		return Context{}, fmt.Errorf("%w: weight must be a positive number of kilograms", ErrInvalidProfile)
	}

	bmi := BMI(p.Weight, p.Height)
	bmr := BMR(p.Gender, p.Weight, p.Height, p.Age)
	tdee := int(math.Round(bmr * activityMultiplier))

	considerations := HealthConsiderations(p.Disease)
	if considerations == nil {
		considerations = []string{}
	}

	return Context{
		Profile:              p,
		BMI:                  bmi,
		BMIStatus:            BMIStatus(bmi),
		BMR:                  bmr,
		TDEE:                 tdee,
		CalorieTarget:        AdjustCalories(tdee, p.Goal),
		TargetWeight:         TargetWeight(p.Height, p.Weight),
		FitnessLevel:         FitnessLevel(p),
		HealthConsiderations: considerations,
	}, nil
}

// BMI returns weight / (height in meters)^2 rounded to one decimal.
func BMI(weightKg, heightCm float64) float64 {
	meters := heightCm / 100
	return roundTenth(weightKg / (meters * meters))
}

// BMR estimates basal metabolic rate with the Mifflin-St Jeor equation.
func BMR(gender string, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.EqualFold(strings.TrimSpace(gender), GenderMale) {
		return base + 5
	}
	return base - 161
}

// AdjustCalories applies the goal adjustment to a daily energy estimate.
func AdjustCalories(tdee int, goal string) int {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "weight loss"), strings.Contains(g, "lose weight"):
		return int(math.Round(float64(tdee) * 0.8))
	case strings.Contains(g, "muscle"), strings.Contains(g, "gain"):
		return int(math.Round(float64(tdee) * 1.1))
	default:
		return tdee
	}
}

// HealthConsiderations maps a free-text condition to dietary guidance tags.
func HealthConsiderations(disease string) []string {
	d := strings.ToLower(strings.TrimSpace(disease))
	if d == "" {
		return nil
	}
	for _, rule := range healthRules {
		if strings.Contains(d, rule.keyword) {
			return append([]string(nil), rule.considerations...)
		}
	}
	return nil
}

// BMIStatus buckets a BMI value into the usual WHO categories.
func BMIStatus(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Healthy Weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// TargetWeight clamps the current weight into the healthy BMI band (18.5-24.9).
func TargetWeight(heightCm, weightKg float64) float64 {
	meters := heightCm / 100
	minWeight := roundTenth(18.5 * meters * meters)
	maxWeight := roundTenth(24.9 * meters * meters)
	switch {
	case weightKg < minWeight:
		return minWeight
	case weightKg > maxWeight:
		return maxWeight
	default:
		return weightKg
	}
}

// FitnessLevel returns the declared fitness level or infers one from the goal.
func FitnessLevel(p UserProfile) string {
	if lvl := strings.TrimSpace(p.FitnessLevel); lvl != "" {
		return lvl
	}
	g := strings.ToLower(p.Goal)
	if strings.Contains(g, "muscle") || strings.Contains(g, "strength") {
		return "intermediate"
	}
	return "beginner"
}

// HasHealthCondition reports whether the disease field names a real condition.
func HasHealthCondition(p UserProfile) bool {
	d := strings.TrimSpace(p.Disease)
	return d != "" && !strings.EqualFold(d, "none")
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
