package llm

import (
	"context"
	"time"
)

// fastRaceCeiling bounds how long the orchestrator waits for the fast
// tier before giving up and falling back to the smart provider.
const fastRaceCeiling = 10 * time.Second

// OrchestratedClient is the tiered client spec.md's LLM layer presents to
// the rest of the pipeline: it races a bounded set of fast providers,
// falls back to one smart provider of record, skips providers whose
// orchestrator-level circuit is open, and records a RequestMetrics entry
// for every attempt.
type OrchestratedClient struct {
	Smart   Client
	Fast    []Client
	Breaker *ProviderCircuitBreaker
	Metrics *MetricsCollector
}

// Name reports the smart-tier provider's id. An OrchestratedClient
// satisfies Client so it can be handed to a frame's LLM collaborator
// field the same way a single provider client would be; the name it
// reports is the one metrics and logs already attribute cross-tier
// fallbacks to.
func (o *OrchestratedClient) Name() string {
	if o.Smart == nil {
		return "orchestrated"
	}
	return o.Smart.Name()
}

// Send implements the tiering policy described in spec.md:
//   - A single-tier smart client (CLI-backed: Claude Code, Codex)
//     collapses both tiers into one call; the fast pool is consulted
//     only if that call comes back empty or failed.
//   - Otherwise, when the caller opted into the fast tier and a fast
//     pool exists, race the fast providers with a 10s ceiling,
//     cancelling losers; on total fast-tier failure, fall back to smart.
func (o *OrchestratedClient) Send(ctx context.Context, req Request) (Response, error) {
	if single, ok := o.Smart.(SingleTierClient); ok && single.SingleTier() {
		resp := o.callAndRecord(ctx, o.Smart, TierSmart, req)
		if resp.Success && resp.Content != "" {
			return resp, nil
		}
		for _, fc := range o.Fast {
			if o.Breaker != nil && o.Breaker.IsOpen(fc.Name()) {
				continue
			}
			fresp := o.callAndRecord(ctx, fc, TierFast, req)
			if fresp.Success {
				return fresp, nil
			}
		}
		return resp, nil
	}

	if req.UseFastTier && len(o.Fast) > 0 {
		if resp, ok := o.raceFastTier(ctx, req); ok {
			return resp, nil
		}
		o.recordSyntheticFallback(ctx)
	}

	return o.callAndRecord(ctx, o.Smart, TierSmart, req), nil
}

// raceFastTier dispatches req to every non-circuit-open fast provider
// concurrently; the first successful response wins and every other
// in-flight call is cancelled via the shared race context.
func (o *OrchestratedClient) raceFastTier(ctx context.Context, req Request) (Response, bool) {
	raceCtx, cancel := context.WithTimeout(ctx, fastRaceCeiling)
	defer cancel()

	type result struct {
		resp Response
	}
	resultCh := make(chan result, len(o.Fast))
	started := 0
	for _, fc := range o.Fast {
		if o.Breaker != nil && o.Breaker.IsOpen(fc.Name()) {
			continue
		}
		started++
		go func(c Client) {
			resultCh <- result{resp: o.callAndRecord(raceCtx, c, TierFast, req)}
		}(fc)
	}
	if started == 0 {
		return Response{}, false
	}

	for i := 0; i < started; i++ {
		select {
		case r := <-resultCh:
			if r.resp.Success {
				return r.resp, true
			}
		case <-raceCtx.Done():
			return Response{}, false
		}
	}
	return Response{}, false
}

// recordSyntheticFallback logs the "all fast providers failed, falling
// back to smart" transition as its own metrics entry, per spec.md's
// worked example (tier=fast, provider=fallback_to_smart).
func (o *OrchestratedClient) recordSyntheticFallback(ctx context.Context) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.Record(RequestMetrics{
		Tier:      TierFast,
		Provider:  "fallback_to_smart",
		Success:   false,
		FrameName: FrameFromContext(ctx),
	})
}

func (o *OrchestratedClient) callAndRecord(ctx context.Context, client Client, tier Tier, req Request) Response {
	start := time.Now()
	resp, err := client.Send(ctx, req)
	if err != nil {
		resp = Response{Success: false, Provider: client.Name(), ErrorMessage: err.Error()}
	}
	if o.Metrics != nil {
		o.Metrics.Record(RequestMetrics{
			Tier:         tier,
			Provider:     client.Name(),
			Model:        resp.Model,
			Success:      resp.Success,
			DurationMS:   time.Since(start).Milliseconds(),
			Error:        resp.ErrorMessage,
			InputTokens:  resp.PromptTokens,
			OutputTokens: resp.CompletionTokens,
			FrameName:    FrameFromContext(ctx),
		})
	}
	return resp
}
