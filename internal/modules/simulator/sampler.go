package simulator

// Downsample bounds the state series to roughly maxPoints entries for
// transport. It keeps every step-th state (step = ceil(n / maxPoints)) and
// unconditionally includes the final state, so the last date and final value
// are never dropped by sampling. maxPoints <= 0 means unrestricted.
func Downsample(states []PortfolioState, maxPoints int) []PortfolioState {
	if maxPoints <= 0 || len(states) <= maxPoints {
		return states
	}

	step := (len(states) + maxPoints - 1) / maxPoints

	sampled := make([]PortfolioState, 0, maxPoints+1)
	lastKept := -1
	for i := 0; i < len(states); i += step {
		sampled = append(sampled, states[i])
		lastKept = i
	}
	if lastKept != len(states)-1 {
		sampled = append(sampled, states[len(states)-1])
	}
	return sampled
}
