package policy

import "dispatchmatch/internal/domain"

// Eligible returns the agents that can take a task requiring the given
// skill in the given zone: available, skill present, zone match. The
// relative order of the input roster is preserved and the input is never
// mutated. An empty result is a normal outcome, not an error.
func Eligible(agents []*domain.Agent, requiredSkill, zone string) []*domain.Agent {
	candidates := make([]*domain.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Available && a.HasSkill(requiredSkill) && a.Zone == zone {
			candidates = append(candidates, a)
		}
	}
	return candidates
}

// PickByQueue returns the candidate with the lowest queue rank, or nil when
// there are no candidates. It relies on the roster being stably sorted
// ascending by rank at load time and does not re-sort; rank ties therefore
// resolve to the agent that appeared first in the roster.
func PickByQueue(candidates []*domain.Agent) *domain.Agent {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}

// PickRoundRobin returns the candidate at the cursor's cyclic position, or
// nil when there are no candidates. The cursor is owned and advanced by the
// caller; this function holds no state.
func PickRoundRobin(candidates []*domain.Agent, cursor int) *domain.Agent {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[cursor%len(candidates)]
}
