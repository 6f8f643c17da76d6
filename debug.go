package hearth

import "go.uber.org/zap"

// globalDebug enables hierarchy sanity checks on SetParent. Transforms have
// no owning scene, so the flag is package-wide.
var globalDebug bool

// SetDebugMode enables or disables debug checks. When enabled, attaching a
// transform deeper than debugMaxTreeDepth logs a warning through zap's
// global logger.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if the chain from t to its root exceeds the
// threshold. Returns the depth for tests.
func debugCheckTreeDepth(t *Transform) int {
	depth := 0
	for p := t; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		zap.L().Warn("transform tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth))
	}
	return depth
}
