package main

// Render or run a generation prompt from the command line:
//   go run ./cmd/prompttest -use-case meal_plan -profile profile.json
//   go run ./cmd/prompttest -use-case food_analysis -food "paneer tikka" -run

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"nutricoach-backend/internal/bootstrap"
	"nutricoach-backend/internal/generation"
	"nutricoach-backend/internal/profile"
	"nutricoach-backend/internal/shared/config"
)

func main() {
	useCase := flag.String("use-case", string(generation.UseCaseMealPlan), "food_analysis, meal_plan, exercise_plan or chat")
	profilePath := flag.String("profile", "", "Path to a user profile JSON file (optional)")
	food := flag.String("food", "", "Food item for food_analysis")
	message := flag.String("message", "", "Message for chat")
	run := flag.Bool("run", false, "Run the full pipeline instead of printing the prompt")
	flag.Parse()

	uc := generation.UseCase(strings.TrimSpace(*useCase))
	if _, ok := generation.Lookup(uc); !ok {
		exitErr(fmt.Sprintf("unsupported use case: %s", uc))
	}

	req := generation.Request{Food: *food, Message: *message}
	if *profilePath != "" {
		p, err := readProfile(*profilePath)
		if err != nil {
			exitErr(err.Error())
		}
		req.Profile = p
	}

	if *run {
		runPipeline(uc, req)
		return
	}

	in := generation.Input{Request: req}
	if req.Profile != nil {
		pc, err := profile.Normalize(*req.Profile)
		if err != nil {
			exitErr(fmt.Sprintf("profile: %v", err))
		}
		in.Context = &pc
	}
	prompt, err := generation.BuildPrompt(uc, in)
	if err != nil {
		exitErr(fmt.Sprintf("build prompt: %v", err))
	}
	fmt.Printf("--- system ---\n%s\n\n--- fallback system ---\n%s\n\n--- user ---\n%s\n", prompt.System, prompt.FallbackSystem, prompt.User)
}

func runPipeline(uc generation.UseCase, req generation.Request) {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		exitErr(fmt.Sprintf("bootstrap: %v", err))
	}
	res, err := app.Pipeline.Run(context.Background(), uc, req)
	if err != nil {
		exitErr(fmt.Sprintf("run: %v", err))
	}
	out, err := json.MarshalIndent(map[string]any{
		"tier":    res.Tier,
		"path":    res.Path,
		"payload": res.Payload,
	}, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	fmt.Println(string(out))
}

func readProfile(path string) (*profile.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p profile.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid profile json: %w", err)
	}
	return &p, nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
