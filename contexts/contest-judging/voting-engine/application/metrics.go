package application

import "inkwell/contexts/contest-judging/voting-engine/ports"

type noopMetrics struct{}

func (noopMetrics) VoteSetCast(string, bool) {}
func (noopMetrics) ContestClosed(string)     {}
func (noopMetrics) RankingCacheLookup(bool)  {}

func ResolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics == nil {
		return noopMetrics{}
	}
	return metrics
}
