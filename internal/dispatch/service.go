package dispatch

import (
	"log"
	"sort"

	"dispatchmatch/internal/domain"
	"dispatchmatch/internal/policy"
)

// Service owns the agent roster for the duration of one run. Confirmed
// tasks consume agent capacity when assigned; planned tasks rotate over
// whatever capacity the confirmed pass left behind and consume nothing.
// A Service is single-use: build one per run.
type Service struct {
	roster []*domain.Agent
	cursor int
	logger *log.Logger
}

// New copies the roster and stably sorts it ascending by queue rank so
// that PickByQueue can take the head without re-sorting per lookup.
func New(roster []*domain.Agent, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	sorted := make([]*domain.Agent, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QueueRank < sorted[j].QueueRank
	})
	return &Service{
		roster: sorted,
		logger: logger,
	}
}

// Run produces exactly one decision per task: the confirmed block first,
// then the planned block, input order preserved inside each. The planned
// pass sees the roster as mutated by the confirmed pass.
func (s *Service) Run(tasks []domain.Task) []domain.Decision {
	confirmed := make([]domain.Task, 0, len(tasks))
	planned := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Confirmed {
			confirmed = append(confirmed, t)
		} else {
			planned = append(planned, t)
		}
	}

	decisions := make([]domain.Decision, 0, len(tasks))

	for _, t := range confirmed {
		candidates := policy.Eligible(s.roster, t.RequiredSkill, t.Zone)
		chosen := policy.PickByQueue(candidates)
		if chosen == nil {
			decisions = append(decisions, emit(t, "", domain.ReasonNoEligibleAgent))
			continue
		}
		chosen.Available = false
		decisions = append(decisions, emit(t, chosen.ID, domain.ReasonConfirmedAssigned))
	}

	for _, t := range planned {
		candidates := policy.Eligible(s.roster, t.RequiredSkill, t.Zone)
		chosen := policy.PickRoundRobin(candidates, s.cursor)
		// The cursor advances even on a miss so that zones and skills
		// that repeatedly fail to match do not bias the rotation.
		s.cursor++
		if chosen == nil {
			decisions = append(decisions, emit(t, "", domain.ReasonNoEligibleAgent))
			continue
		}
		decisions = append(decisions, emit(t, chosen.ID, domain.ReasonPlannedAssigned))
	}

	s.logger.Printf(
		"dispatch run complete tasks=%d confirmed=%d planned=%d assigned=%d",
		len(tasks), len(confirmed), len(planned), AssignedCount(decisions),
	)
	return decisions
}

// emit shapes one orchestrator outcome into the external decision schema.
func emit(t domain.Task, agentID, reason string) domain.Decision {
	return domain.Decision{
		TaskID:        t.ID,
		TaskType:      t.Type,
		RequiredSkill: t.RequiredSkill,
		Zone:          t.Zone,
		AssignedAgent: agentID,
		Reason:        reason,
	}
}

// AssignedCount reports how many decisions carry an assigned agent.
func AssignedCount(decisions []domain.Decision) int {
	n := 0
	for _, d := range decisions {
		if d.AssignedAgent != "" {
			n++
		}
	}
	return n
}
