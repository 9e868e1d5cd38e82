package generation

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/shared/storage/cache"
)

type stubClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []llm.Request
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func failing(status int) *stubClient {
	return &stubClient{err: &llm.UpstreamError{Endpoint: "stub", StatusCode: status}}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(data)
}

func TestRunPrimarySuccess(t *testing.T) {
	primary := &stubClient{reply: "Plan:\n" + mealPlanJSON("")}
	fallback := &stubClient{}
	p := NewPipeline(primary, fallback)

	res, err := p.Run(context.Background(), UseCaseMealPlan, Request{Profile: testProfile()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tier != TierPrimary {
		t.Fatalf("expected primary tier, got %s", res.Tier)
	}
	if fallback.callCount() != 0 {
		t.Fatalf("fallback should not be called")
	}
	want := []State{StateValidating, StatePrompting, StateCallingPrimary, StateExtractingPrimary, StateDone}
	if !reflect.DeepEqual(res.Path, want) {
		t.Fatalf("unexpected path %v", res.Path)
	}
	if res.PromptHash == "" {
		t.Fatalf("expected prompt hash")
	}
	if len(primary.calls[0].Messages) != 2 || primary.calls[0].MaxTokens != 0 {
		t.Fatalf("unexpected primary request: %+v", primary.calls[0])
	}
}

func TestRunFallsBackOnPrimaryFailure(t *testing.T) {
	primary := failing(500)
	fallback := &stubClient{reply: exercisePlanJSON("")}
	p := NewPipeline(primary, fallback)

	res, err := p.Run(context.Background(), UseCaseExercisePlan, Request{Profile: testProfile()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tier != TierFallback {
		t.Fatalf("expected fallback tier, got %s", res.Tier)
	}
	req := fallback.calls[0]
	if req.MaxTokens != 2000 {
		t.Fatalf("expected fallback max tokens 2000, got %d", req.MaxTokens)
	}
	if req.Messages[0].Content != systemExerciseFallback {
		t.Fatalf("expected fallback system prompt, got %q", req.Messages[0].Content)
	}
}

func TestRunFallsBackOnUnparseablePrimary(t *testing.T) {
	primary := &stubClient{reply: mealPlanJSON("Friday")}
	fallback := &stubClient{reply: mealPlanJSON("")}
	res, err := NewPipeline(primary, fallback).Run(context.Background(), UseCaseMealPlan, Request{Profile: testProfile()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tier != TierFallback {
		t.Fatalf("expected fallback tier after schema failure, got %s", res.Tier)
	}
}

func TestRunStaticVariants(t *testing.T) {
	tests := []struct {
		name     string
		fallback *stubClient
		want     StaticVariant
	}{
		{name: "fallback unreachable", fallback: failing(503), want: StaticBasic},
		{name: "fallback unparseable", fallback: &stubClient{reply: "sorry, no json today"}, want: StaticDetailed},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Profile: testProfile()}
			res, err := NewPipeline(failing(500), tt.fallback).Run(context.Background(), UseCaseMealPlan, req)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Tier != TierStatic {
				t.Fatalf("expected static tier, got %s", res.Tier)
			}
			want := staticMealPlan(testInput(t, sanitizeRequest(req)), tt.want)
			if !reflect.DeepEqual(res.Payload, want) {
				t.Fatalf("expected %s variant", tt.want)
			}
			if res.Path[len(res.Path)-2] != StateStaticFallback {
				t.Fatalf("unexpected path %v", res.Path)
			}
		})
	}
}

func TestRunValidationErrorsMakeNoCalls(t *testing.T) {
	tests := []struct {
		name string
		uc   UseCase
		req  Request
		want string
	}{
		{name: "empty food", uc: UseCaseFoodAnalysis, req: Request{Food: "  "}, want: "Food item is required"},
		{name: "empty message", uc: UseCaseChat, req: Request{}, want: "Message is required"},
		{name: "meal plan without profile", uc: UseCaseMealPlan, req: Request{}, want: "User profile is required"},
		{name: "exercise plan without profile", uc: UseCaseExercisePlan, req: Request{}, want: "User profile is required"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			primary, fallback := &stubClient{}, &stubClient{}
			_, err := NewPipeline(primary, fallback).Run(context.Background(), tt.uc, tt.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Message != tt.want {
				t.Fatalf("expected ValidationError %q, got %v", tt.want, err)
			}
			if primary.callCount()+fallback.callCount() != 0 {
				t.Fatalf("expected no model calls")
			}
		})
	}
}

func TestRunInvalidProfile(t *testing.T) {
	bad := testProfile()
	bad.Weight = 0

	_, err := NewPipeline(&stubClient{}, &stubClient{}).Run(context.Background(), UseCaseMealPlan, Request{Profile: bad})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for required profile, got %v", err)
	}

	primary := &stubClient{reply: validFoodReply}
	res, err := NewPipeline(primary, nil).Run(context.Background(), UseCaseFoodAnalysis, Request{Food: "apple", Profile: bad})
	if err != nil {
		t.Fatalf("expected optional profile to be dropped, got %v", err)
	}
	if res.Tier != TierPrimary {
		t.Fatalf("expected primary tier, got %s", res.Tier)
	}
}

func TestRunCancelledContextDegradesToStatic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary, fallback := &stubClient{reply: "{}"}, &stubClient{reply: "{}"}

	res, err := NewPipeline(primary, fallback).Run(ctx, UseCaseChat, Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tier != TierStatic {
		t.Fatalf("expected static tier, got %s", res.Tier)
	}
	if primary.callCount()+fallback.callCount() != 0 {
		t.Fatalf("expected no model calls on cancelled context")
	}
}

func TestRunUnknownUseCase(t *testing.T) {
	if _, err := NewPipeline(nil, nil).Run(context.Background(), "horoscope", Request{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunNilClientsDegradeToStatic(t *testing.T) {
	res, err := NewPipeline(nil, nil).Run(context.Background(), UseCaseFoodAnalysis, Request{Food: "apple"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tier != TierStatic {
		t.Fatalf("expected static tier, got %s", res.Tier)
	}
}

func TestRunLightModelOverride(t *testing.T) {
	primary := &stubClient{reply: "Eat more greens."}
	p := NewPipeline(primary, nil, WithLightModel("gpt-4o-mini"))

	if _, err := p.Run(context.Background(), UseCaseChat, Request{Message: "tips?"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if primary.calls[0].Model != "gpt-4o-mini" {
		t.Fatalf("expected light model for chat, got %q", primary.calls[0].Model)
	}

	primary.reply = mealPlanJSON("")
	if _, err := p.Run(context.Background(), UseCaseMealPlan, Request{Profile: testProfile()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if primary.calls[1].Model != "" {
		t.Fatalf("expected endpoint default model for meal plan, got %q", primary.calls[1].Model)
	}
}

func TestRunCachesModelTiers(t *testing.T) {
	c := cache.NewMemory()
	primary := &stubClient{reply: validFoodReply}
	p := NewPipeline(primary, nil, WithCache(c, time.Hour))
	req := Request{Food: "apple", Profile: testProfile()}

	first, err := p.Run(context.Background(), UseCaseFoodAnalysis, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := p.Run(context.Background(), UseCaseFoodAnalysis, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if primary.callCount() != 1 {
		t.Fatalf("expected one model call, got %d", primary.callCount())
	}
	if !second.Cached || second.Tier != TierPrimary {
		t.Fatalf("expected cached primary result, got %+v", second)
	}
	if !reflect.DeepEqual(first.Payload, second.Payload) {
		t.Fatalf("cached payload differs: %+v vs %+v", first.Payload, second.Payload)
	}
}

func TestRunDoesNotCacheStaticOrChat(t *testing.T) {
	c := cache.NewMemory()
	p := NewPipeline(failing(500), failing(500), WithCache(c, time.Hour))
	if _, err := p.Run(context.Background(), UseCaseFoodAnalysis, Request{Food: "apple"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("static result must not be cached")
	}

	p = NewPipeline(&stubClient{reply: "hello"}, nil, WithCache(c, time.Hour))
	if _, err := p.Run(context.Background(), UseCaseChat, Request{Message: "hi"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("chat must not be cached")
	}
}

func TestRunRecordsDuration(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 250 * time.Millisecond)
	}
	res, err := NewPipeline(&stubClient{reply: "ok"}, nil, WithClock(clock)).Run(context.Background(), UseCaseChat, Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Duration != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", res.Duration)
	}
}
