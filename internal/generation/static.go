package generation

import (
	"fmt"
	"strings"

	"nutricoach-backend/internal/profile"
)

// StaticVariant selects between the two hardcoded payloads of a use case.
type StaticVariant int

const (
	// StaticBasic is used when the fallback model could not be reached.
	StaticBasic StaticVariant = iota
	// StaticDetailed is used when the fallback model answered but its reply was unusable.
	StaticDetailed
)

func (v StaticVariant) String() string {
	if v == StaticDetailed {
		return "detailed"
	}
	return "basic"
}

// Static payloads never fail and never touch the network. They depend only on
// their input.

func staticMealPlan(in Input, variant StaticVariant) any {
	p := requestProfile(in)
	diet := orDefault(p.DietPreference, "chosen")
	goal := orDefault(p.Goal, "health")

	if variant == StaticBasic {
		return WeeklyMealPlan{
			{Breakfast: fmt.Sprintf("Protein-rich breakfast suitable for your %s diet", diet), Lunch: "Balanced lunch with lean protein, complex carbs, and vegetables", Dinner: fmt.Sprintf("Nutritious dinner aligned with your %s goal", goal)},
			{Breakfast: "Whole grain breakfast option with fruit", Lunch: "Vegetable-rich lunch with adequate protein", Dinner: "Lean protein with vegetables and healthy carbs"},
			{Breakfast: "High-fiber breakfast option", Lunch: "Protein and vegetable lunch combination", Dinner: "Balanced dinner with all macronutrients"},
			{Breakfast: "Protein smoothie or quick breakfast option", Lunch: "Hearty lunch with adequate protein", Dinner: "Light dinner with lean protein"},
			{Breakfast: "Nutritious breakfast with healthy fats", Lunch: "Fiber-rich lunch option", Dinner: "Protein-focused dinner with vegetables"},
			{Breakfast: "Weekend breakfast option with balanced nutrients", Lunch: "Satisfying lunch with plenty of vegetables", Dinner: fmt.Sprintf("Special dinner that fits your %s diet", diet)},
			{Breakfast: "Relaxed breakfast with good protein content", Lunch: "Light lunch option with vegetables", Dinner: "Well-rounded dinner to prepare for the week"},
		}
	}

	plan := omnivoreMealPlan
	if isPlantBased(p.DietPreference) {
		plan = plantBasedMealPlan
	}
	snacks := fmt.Sprintf("1-2 snacks that support your %s goal, such as fruit with a handful of nuts or hummus with vegetable sticks.", goal)
	if in.Context != nil && in.Context.CalorieTarget > 0 {
		snacks += fmt.Sprintf(" Keep the daily total near %d calories.", in.Context.CalorieTarget)
	}
	for i := range plan {
		plan[i].Snacks = snacks
	}
	return plan
}

var omnivoreMealPlan = WeeklyMealPlan{
	{
		Breakfast: "Oatmeal with fresh berries and nuts. About 350 calories with 10g protein, 45g carbs, 15g fat.",
		Lunch:     "Grilled chicken salad with mixed vegetables and olive oil dressing. About 450 calories with 35g protein, 15g carbs, 25g fat.",
		Dinner:    "Baked salmon with quinoa and steamed vegetables. About 500 calories with 30g protein, 30g carbs, 25g fat.",
	},
	{
		Breakfast: "Greek yogurt with honey and granola. About 300 calories with 20g protein, 40g carbs, 10g fat.",
		Lunch:     "Vegetable soup with whole grain bread. About 400 calories with 15g protein, 60g carbs, 10g fat.",
		Dinner:    "Lean beef stir-fry with brown rice and vegetables. About 550 calories with 35g protein, 60g carbs, 15g fat.",
	},
	{
		Breakfast: "Whole grain toast with avocado and eggs. About 400 calories with 20g protein, 30g carbs, 25g fat.",
		Lunch:     "Quinoa bowl with beans, corn, and avocado. About 450 calories with 15g protein, 70g carbs, 15g fat.",
		Dinner:    "Baked chicken with sweet potato and green beans. About 500 calories with 35g protein, 40g carbs, 15g fat.",
	},
	{
		Breakfast: "Protein smoothie with banana and berries. About 350 calories with 25g protein, 45g carbs, 8g fat.",
		Lunch:     "Tuna sandwich on whole grain bread with side salad. About 400 calories with 30g protein, 40g carbs, 12g fat.",
		Dinner:    "Vegetable stir-fry with tofu and brown rice. About 450 calories with 20g protein, 60g carbs, 15g fat.",
	},
	{
		Breakfast: "Overnight chia pudding with fruit. About 300 calories with 12g protein, 40g carbs, 10g fat.",
		Lunch:     "Lentil soup with side salad. About 400 calories with 20g protein, 55g carbs, 10g fat.",
		Dinner:    "Grilled fish with roasted vegetables. About 450 calories with 35g protein, 25g carbs, 20g fat.",
	},
	{
		Breakfast: "Whole grain pancakes with fresh fruit. About 400 calories with 15g protein, 70g carbs, 10g fat.",
		Lunch:     "Mediterranean salad with chickpeas and feta. About 400 calories with 15g protein, 30g carbs, 25g fat.",
		Dinner:    "Turkey meatballs with whole grain pasta. About 550 calories with 35g protein, 60g carbs, 15g fat.",
	},
	{
		Breakfast: "Vegetable omelet with whole grain toast. About 350 calories with 25g protein, 25g carbs, 15g fat.",
		Lunch:     "Chicken wrap with vegetables. About 450 calories with 30g protein, 45g carbs, 15g fat.",
		Dinner:    "Baked fish with quinoa and roasted vegetables. About 500 calories with 35g protein, 45g carbs, 15g fat.",
	},
}

var plantBasedMealPlan = WeeklyMealPlan{
	{
		Breakfast: "Oatmeal cooked with soy milk, topped with berries and walnuts. About 380 calories with 14g protein, 50g carbs, 14g fat.",
		Lunch:     "Chickpea and spinach salad with tahini dressing. About 450 calories with 18g protein, 45g carbs, 20g fat.",
		Dinner:    "Red lentil dal with brown rice and steamed greens. About 520 calories with 24g protein, 80g carbs, 10g fat.",
	},
	{
		Breakfast: "Tofu scramble with peppers and whole grain toast. About 350 calories with 22g protein, 30g carbs, 15g fat.",
		Lunch:     "Vegetable and bean soup with rye bread. About 400 calories with 17g protein, 60g carbs, 8g fat.",
		Dinner:    "Tempeh stir-fry with broccoli and soba noodles. About 540 calories with 30g protein, 60g carbs, 18g fat.",
	},
	{
		Breakfast: "Smoothie with banana, peanut butter, oats and plant protein. About 400 calories with 25g protein, 50g carbs, 12g fat.",
		Lunch:     "Quinoa bowl with black beans, corn, and avocado. About 450 calories with 15g protein, 70g carbs, 15g fat.",
		Dinner:    "Stuffed bell peppers with brown rice and kidney beans. About 480 calories with 18g protein, 80g carbs, 8g fat.",
	},
	{
		Breakfast: "Whole grain toast with avocado and pumpkin seeds. About 360 calories with 12g protein, 35g carbs, 20g fat.",
		Lunch:     "Hummus and roasted vegetable wrap. About 420 calories with 14g protein, 55g carbs, 16g fat.",
		Dinner:    "Vegetable stir-fry with tofu and brown rice. About 450 calories with 20g protein, 60g carbs, 15g fat.",
	},
	{
		Breakfast: "Overnight chia pudding with fruit. About 300 calories with 12g protein, 40g carbs, 10g fat.",
		Lunch:     "Lentil soup with side salad. About 400 calories with 20g protein, 55g carbs, 10g fat.",
		Dinner:    "Chickpea curry with cauliflower and whole wheat flatbread. About 520 calories with 20g protein, 75g carbs, 14g fat.",
	},
	{
		Breakfast: "Whole grain pancakes made with flax egg and fresh fruit. About 400 calories with 12g protein, 70g carbs, 9g fat.",
		Lunch:     "Mediterranean salad with chickpeas, olives and cucumber. About 400 calories with 14g protein, 40g carbs, 20g fat.",
		Dinner:    "Whole grain pasta with lentil bolognese. About 550 calories with 28g protein, 85g carbs, 9g fat.",
	},
	{
		Breakfast: "Buckwheat porridge with sliced pear and almonds. About 350 calories with 11g protein, 55g carbs, 10g fat.",
		Lunch:     "Black bean burrito bowl with salsa and greens. About 460 calories with 18g protein, 70g carbs, 12g fat.",
		Dinner:    "Baked tofu with quinoa and roasted vegetables. About 500 calories with 28g protein, 55g carbs, 17g fat.",
	},
}

func staticExercisePlan(in Input, variant StaticVariant) any {
	level := profile.FitnessLevel(requestProfile(in))
	if in.Context != nil && in.Context.FitnessLevel != "" {
		level = in.Context.FitnessLevel
	}

	if variant == StaticBasic {
		return WeeklyExercisePlan{
			{Warmup: "5 minutes of light cardio and dynamic stretches", Main: fmt.Sprintf("Full body workout with basic exercises appropriate for your %s fitness level", level), Cooldown: "5 minutes of static stretching"},
			{Warmup: "5 minutes of light movement to increase heart rate", Main: "Cardio session adjusted to your fitness level", Cooldown: "Gentle stretching and breathing exercises"},
			{Warmup: "Joint mobility exercises", Main: "Core-focused workout with appropriate modifications", Cooldown: "Stretching focusing on worked muscles"},
			{Warmup: "Light movement", Main: "Rest day or gentle activity like walking", Cooldown: "Relaxation techniques"},
			{Warmup: "Dynamic stretches for upper body", Main: "Upper body strengthening exercises", Cooldown: "Upper body stretches"},
			{Warmup: "Dynamic stretches for lower body", Main: "Lower body strengthening exercises", Cooldown: "Lower body stretches"},
			{Warmup: "Gentle mobility work", Main: "Rest day for recovery", Cooldown: "Full body stretching"},
		}
	}

	beginner := level == "beginner"
	pick := func(ifBeginner, otherwise string) string {
		if beginner {
			return ifBeginner
		}
		return otherwise
	}
	return WeeklyExercisePlan{
		{
			Warmup:   "5-10 minutes of light cardio (walking or cycling) followed by dynamic stretches for major muscle groups.",
			Main:     pick("Beginner", "Standard") + " full body workout: 3 sets of 10-12 reps of bodyweight squats, modified push-ups, assisted lunges, and standing rows. Rest 60-90 seconds between sets.",
			Cooldown: "5-10 minutes of static stretching focusing on worked muscle groups, holding each stretch for 20-30 seconds.",
		},
		{
			Warmup:   "5 minutes of jumping jacks or marching in place followed by arm circles and leg swings.",
			Main:     "Cardio session: " + pick("20", "30") + " minutes of moderate-intensity walking, swimming or cycling. Keep heart rate at 60-70% of maximum.",
			Cooldown: "5 minutes of gentle walking followed by full-body stretching routine.",
		},
		{
			Warmup:   "5-10 minutes of light activity and dynamic movements for mobility.",
			Main:     pick("Basic", "Intermediate") + " core workout: 3 sets of modified planks (20-30 seconds), gentle bridges, and controlled leg lifts. Focus on proper form rather than speed.",
			Cooldown: "Gentle stretching focusing on the back and core muscles.",
		},
		{
			Warmup:   "Light aerobic activity and dynamic stretching.",
			Main:     "Rest day or active recovery: gentle walking for 20 minutes or " + pick("beginner", "appropriate level") + " yoga flow.",
			Cooldown: "Deep breathing exercises and relaxation techniques.",
		},
		{
			Warmup:   "5 minutes of step-ups or marching in place followed by mobility exercises for shoulders and hips.",
			Main:     fmt.Sprintf("Upper body focus: 3 sets of 10-12 reps of wall push-ups or regular push-ups (based on ability), band rows, shoulder press with light weights, and tricep dips. Adjust intensity to %s level.", level),
			Cooldown: "Upper body and neck stretches, holding each for 20-30 seconds.",
		},
		{
			Warmup:   "Light cardio warmup for 5 minutes and dynamic lower body movements.",
			Main:     "Lower body focus: 3 sets of 10-15 reps of bodyweight squats, step-ups, glute bridges, and calf raises. " + pick("Take longer rest periods as needed", "Rest 60 seconds between sets") + ".",
			Cooldown: "Lower body stretching routine focusing on quads, hamstrings, and calves.",
		},
		{
			Warmup:   "Gentle full body mobility exercises.",
			Main:     "Complete rest day or light walking in nature for mental and physical recovery.",
			Cooldown: "Full body stretching and relaxation techniques.",
		},
	}
}

func staticFoodAnalysis(in Input, _ StaticVariant) any {
	food := orDefault(in.Request.Food, "this food")
	p := requestProfile(in)

	var rec strings.Builder
	fmt.Fprintf(&rec, "A detailed analysis of %q is not available right now. Check the nutrition label or a trusted food database, and try again shortly.", food)
	if goal := strings.TrimSpace(p.Goal); goal != "" {
		fmt.Fprintf(&rec, " For your goal of %s, keep portions moderate and balance this food within your daily plan.", goal)
	}
	if in.Context != nil && in.Context.CalorieTarget > 0 {
		fmt.Fprintf(&rec, " Your estimated daily target is about %d calories.", in.Context.CalorieTarget)
	}
	if diet := strings.TrimSpace(p.DietPreference); diet != "" {
		fmt.Fprintf(&rec, " Make sure it fits your %s diet.", diet)
	}
	if tags := profile.HealthConsiderations(p.Disease); len(tags) > 0 {
		fmt.Fprintf(&rec, " Given your health condition, prefer %s.", strings.Join(tags, ", "))
	}

	return FoodAnalysis{
		Calories: "Not available",
		Nutrients: []string{
			"Protein: not available",
			"Carbs: not available",
			"Fat: not available",
			"Fiber: not available",
		},
		Pros: []string{
			"Whole, minimally processed versions are usually richer in vitamins, minerals and fiber",
			"Preparing it at home lets you control portions and added ingredients",
			"Pairing it with vegetables and a protein source makes for a balanced meal",
		},
		Cons: []string{
			fmt.Sprintf("Detailed nutrition data for %q could not be generated right now", food),
			"Fried or heavily processed versions can be high in sodium, sugar or saturated fat",
			"Large portions can add up quickly in total calories",
		},
		Recommendation: rec.String(),
	}
}

func staticChat(in Input, _ StaticVariant) any {
	p := requestProfile(in)

	var b strings.Builder
	b.WriteString("I'm sorry, the health assistant is unavailable right now. Please try your question again in a few minutes.")

	goal := strings.ToLower(p.Goal)
	switch {
	case strings.Contains(goal, "weight loss"), strings.Contains(goal, "lose weight"):
		b.WriteString(" In the meantime, for weight loss focus on a moderate calorie deficit, plenty of vegetables and lean protein, and regular activity you enjoy.")
	case strings.Contains(goal, "muscle"), strings.Contains(goal, "gain"):
		b.WriteString(" In the meantime, for gaining weight or muscle focus on a small calorie surplus, enough protein at each meal, and progressive strength training.")
	default:
		b.WriteString(" In the meantime, aim for balanced meals, regular physical activity, good sleep and enough water.")
	}
	if profile.HasHealthCondition(p) {
		fmt.Fprintf(&b, " Because you mentioned %s, please check with your healthcare provider before changing your diet or exercise routine.", strings.TrimSpace(p.Disease))
	}
	return ChatReply{Content: b.String()}
}

func requestProfile(in Input) profile.UserProfile {
	if in.Context != nil {
		return in.Context.Profile
	}
	if in.Request.Profile != nil {
		return *in.Request.Profile
	}
	return profile.UserProfile{}
}

func isPlantBased(diet string) bool {
	d := strings.ToLower(strings.TrimSpace(diet))
	return d == profile.DietVegetarian || d == profile.DietVegan
}
