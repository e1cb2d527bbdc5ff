package frame

import "time"

// localProviders lists the provider IDs whose inference runs on the
// scanning host rather than a remote API, so CPU-side prefill can exceed
// typical cloud response timings. Mirrors internal/llm/providers'
// registered subprocess and loopback clients.
var localProviders = map[string]bool{
	"ollama":      true,
	"claude-code": true,
	"codex":       true,
}

// TimeoutParams is the subset of internal/config.FileTimeoutConfig the
// timeout formula needs, duplicated here rather than imported to keep
// internal/frame free of a dependency on internal/config.
type TimeoutParams struct {
	BytesPerSecond  int
	MinSeconds      float64
	MaxSeconds      float64
	MinLocalSeconds float64
}

// FileTimeout computes the per-file dynamic timeout:
// clamp(size_bytes/bytes_per_second, min_floor, max_ceiling), where
// min_floor is MinLocalSeconds when provider runs on the local host,
// else MinSeconds.
func FileTimeout(sizeBytes int64, provider string, params TimeoutParams) time.Duration {
	floor := params.MinSeconds
	if localProviders[provider] {
		floor = params.MinLocalSeconds
	}

	bps := params.BytesPerSecond
	if bps <= 0 {
		bps = 1
	}
	seconds := float64(sizeBytes) / float64(bps)

	if seconds < floor {
		seconds = floor
	}
	if seconds > params.MaxSeconds {
		seconds = params.MaxSeconds
	}
	return time.Duration(seconds * float64(time.Second))
}

// TimeoutFinding builds the synthetic WARDEN-TIMEOUT finding spec
// requires when a frame's execution exceeds its per-file deadline, so
// the user sees evidence of the timeout instead of a silently missing
// frame result.
func TimeoutFinding(filePath string) Finding {
	return Finding{
		ID:        "WARDEN-TIMEOUT",
		Severity:  SeverityMedium,
		Message:   "frame execution exceeded its per-file timeout",
		Location:  filePath,
		RuleID:    "WARDEN-TIMEOUT",
		FilePath:  filePath,
		IsBlocker: false,
	}
}
