package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/profile"
	"nutricoach-backend/internal/shared/metrics"
	"nutricoach-backend/internal/shared/storage/cache"
	"nutricoach-backend/internal/shared/telemetry"
	"nutricoach-backend/internal/shared/util"
)

// State is a step of the generation state machine.
type State string

const (
	StateValidating         State = "validating"
	StatePrompting          State = "prompting"
	StateCallingPrimary     State = "calling_primary"
	StateExtractingPrimary  State = "extracting_primary"
	StateCallingFallback    State = "calling_fallback"
	StateExtractingFallback State = "extracting_fallback"
	StateStaticFallback     State = "static_fallback"
	StateDone               State = "done"
)

// Pipeline runs one request through primary model, fallback model and static
// payload, in that order. Calls are strictly sequential.
type Pipeline struct {
	primary    llm.Client
	fallback   llm.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	lightModel string
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache stores model-tier payloads in c for ttl. A non-positive ttl disables caching.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithLightModel sets the primary model used by food analysis and chat.
func WithLightModel(model string) Option {
	return func(p *Pipeline) {
		p.lightModel = model
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline constructs a Pipeline. A nil client behaves like an unconfigured endpoint.
func NewPipeline(primary, fallback llm.Client, opts ...Option) *Pipeline {
	if primary == nil {
		primary = llm.Unconfigured{Name: "primary"}
	}
	if fallback == nil {
		fallback = llm.Unconfigured{Name: "fallback"}
	}
	p := &Pipeline{
		primary:  primary,
		fallback: fallback,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type run struct {
	uc         UseCase
	start      time.Time
	path       []State
	promptHash string
}

func (r *run) enter(state State, fields map[string]any) {
	r.path = append(r.path, state)
	if fields == nil {
		fields = map[string]any{}
	}
	fields["use_case"] = string(r.uc)
	fields["state"] = string(state)
	if r.promptHash != "" {
		fields["prompt_hash"] = r.promptHash
	}
	telemetry.Info("generation.transition", fields)
}

type cacheEntry struct {
	Tier    Tier            `json:"tier"`
	Payload json.RawMessage `json:"payload"`
}

// Run executes the pipeline. It returns an error only for *ValidationError or
// an unknown use case; every model or parse failure degrades to a lower tier.
func (p *Pipeline) Run(ctx context.Context, uc UseCase, req Request) (Result, error) {
	desc, ok := Lookup(uc)
	if !ok {
		return Result{}, fmt.Errorf("unknown use case %q", uc)
	}
	metrics.IncGenerationStarted()
	r := &run{uc: uc, start: p.now()}

	r.enter(StateValidating, nil)
	req = sanitizeRequest(req)
	in, err := p.validate(desc, req)
	if err != nil {
		metrics.IncValidationFailed()
		telemetry.Warn("generation.validation_failed", map[string]any{
			"use_case": string(uc),
			"error":    err,
		})
		return Result{}, err
	}

	r.enter(StatePrompting, nil)
	prompt := desc.Prompt(in)
	r.promptHash = util.HashKey(append([]string{string(uc)}, prompt.hashParts()...)...)

	if payload, tier, ok := p.lookupCache(ctx, desc, r.promptHash); ok {
		return p.finish(r, Result{UseCase: uc, Tier: tier, Payload: payload, Cached: true}), nil
	}

	primaryReq := llm.Request{Messages: prompt.messages(false)}
	if desc.LightModel {
		primaryReq.Model = p.lightModel
	}
	if payload, _, ok := p.attempt(ctx, r, desc, p.primary, "primary", primaryReq, StateCallingPrimary, StateExtractingPrimary); ok {
		p.storeCache(ctx, desc, r.promptHash, TierPrimary, payload)
		return p.finish(r, Result{UseCase: uc, Tier: TierPrimary, Payload: payload}), nil
	}

	fallbackReq := llm.Request{
		Messages:  prompt.messages(true),
		MaxTokens: desc.FallbackMaxTokens,
	}
	payload, answered, ok := p.attempt(ctx, r, desc, p.fallback, "fallback", fallbackReq, StateCallingFallback, StateExtractingFallback)
	if ok {
		p.storeCache(ctx, desc, r.promptHash, TierFallback, payload)
		return p.finish(r, Result{UseCase: uc, Tier: TierFallback, Payload: payload}), nil
	}

	variant := StaticBasic
	if answered {
		variant = StaticDetailed
	}
	r.enter(StateStaticFallback, map[string]any{"variant": variant.String()})
	return p.finish(r, Result{UseCase: uc, Tier: TierStatic, Payload: desc.Static(in, variant)}), nil
}

func (p *Pipeline) validate(desc Descriptor, req Request) (Input, error) {
	if err := desc.Validate(req); err != nil {
		return Input{}, err
	}
	in := Input{Request: req}
	if req.Profile == nil {
		return in, nil
	}
	pc, err := profile.Normalize(*req.Profile)
	if err != nil {
		if desc.RequireProfile {
			return Input{}, &ValidationError{Message: err.Error()}
		}
		telemetry.Warn("generation.profile_ignored", map[string]any{
			"use_case": string(desc.UseCase),
			"error":    err,
		})
		return in, nil
	}
	in.Context = &pc
	return in, nil
}

// attempt makes one model call and decodes the reply. answered reports whether
// the model returned text at all, which selects the static variant.
func (p *Pipeline) attempt(ctx context.Context, r *run, desc Descriptor, client llm.Client, name string, req llm.Request, calling, extracting State) (payload any, answered bool, ok bool) {
	r.enter(calling, map[string]any{"endpoint": name})
	if err := ctx.Err(); err != nil {
		telemetry.Warn("generation.skipped", map[string]any{
			"use_case": string(r.uc),
			"endpoint": name,
			"error":    err,
		})
		return nil, false, false
	}

	raw, err := client.Complete(ctx, req)
	if err != nil {
		metrics.IncUpstreamFailure(name)
		fields := map[string]any{
			"use_case": string(r.uc),
			"endpoint": name,
			"error":    err,
		}
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			fields["status"] = upErr.StatusCode
			fields["timeout"] = upErr.Timeout
		}
		telemetry.Warn("generation.upstream_failed", fields)
		return nil, false, false
	}

	r.enter(extracting, map[string]any{"endpoint": name, "reply_bytes": len(raw)})
	payload, err = desc.Decode(raw)
	if err != nil {
		telemetry.Warn("generation.parse_failed", map[string]any{
			"use_case": string(r.uc),
			"endpoint": name,
			"error":    err,
		})
		return nil, true, false
	}
	return payload, true, true
}

func (p *Pipeline) finish(r *run, res Result) Result {
	r.enter(StateDone, map[string]any{"tier": string(res.Tier), "cached": res.Cached})
	res.PromptHash = r.promptHash
	res.Path = r.path
	res.Duration = p.now().Sub(r.start)
	metrics.IncTier(string(res.Tier))
	metrics.ObserveGenerationDurationMs(float64(res.Duration.Milliseconds()))
	return res
}

func (p *Pipeline) cacheEnabled(desc Descriptor) bool {
	return desc.Cacheable && p.cache != nil && p.cacheTTL > 0
}

func (p *Pipeline) lookupCache(ctx context.Context, desc Descriptor, key string) (any, Tier, bool) {
	if !p.cacheEnabled(desc) {
		return nil, "", false
	}
	data, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("generation.cache_get_failed", map[string]any{"use_case": string(desc.UseCase), "error": err})
		return nil, "", false
	}
	if !ok {
		return nil, "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		telemetry.Warn("generation.cache_corrupt", map[string]any{"use_case": string(desc.UseCase), "error": err})
		return nil, "", false
	}
	payload, err := desc.Decode(string(entry.Payload))
	if err != nil {
		telemetry.Warn("generation.cache_corrupt", map[string]any{"use_case": string(desc.UseCase), "error": err})
		return nil, "", false
	}
	return payload, entry.Tier, true
}

func (p *Pipeline) storeCache(ctx context.Context, desc Descriptor, key string, tier Tier, payload any) {
	if !p.cacheEnabled(desc) {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		telemetry.Warn("generation.cache_set_failed", map[string]any{"use_case": string(desc.UseCase), "error": err})
		return
	}
	data, err := json.Marshal(cacheEntry{Tier: tier, Payload: body})
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		telemetry.Warn("generation.cache_set_failed", map[string]any{"use_case": string(desc.UseCase), "error": err})
	}
}
