package domain

import "time"

// Decision reason strings are part of the output contract; consumers match
// on them verbatim. The unmatched reason is shared by both task classes.
const (
	ReasonConfirmedAssigned = "confirmed task assigned by top-of-queue (fairness)"
	ReasonPlannedAssigned   = "planned task assigned by round-robin (fair distribution)"
	ReasonNoEligibleAgent   = "no eligible agent available in same zone"
)

type Agent struct {
	ID        string          `json:"agent_id"`
	Skills    map[string]bool `json:"skills"`
	Zone      string          `json:"zone"`
	Available bool            `json:"is_available"`
	QueueRank int             `json:"queue_rank"`
}

func (a *Agent) HasSkill(skill string) bool {
	return a.Skills[skill]
}

// SkillSet builds a membership set from skill names, dropping empties.
func SkillSet(skills ...string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		if s != "" {
			set[s] = true
		}
	}
	return set
}

// Task is immutable once loaded. Confirmed tasks are assigned by queue
// rank and consume agent capacity; planned tasks rotate and do not.
type Task struct {
	ID            string `json:"task_id"`
	Type          string `json:"task_type"`
	RequiredSkill string `json:"required_skill"`
	Zone          string `json:"zone"`
	Confirmed     bool   `json:"is_confirmed"`
}

// Decision is the single externally visible record per task. AssignedAgent
// is the empty string when no eligible agent was found.
type Decision struct {
	TaskID        string `json:"task_id"`
	TaskType      string `json:"task_type"`
	RequiredSkill string `json:"required_skill"`
	Zone          string `json:"zone"`
	AssignedAgent string `json:"assigned_agent"`
	Reason        string `json:"decision_reason"`
}

// Run summarizes one completed dispatch run for the history store.
type Run struct {
	ID            string    `json:"id"`
	AgentsPath    string    `json:"agents_path"`
	TasksPath     string    `json:"tasks_path"`
	OutputPath    string    `json:"output_path"`
	TaskCount     int       `json:"task_count"`
	AssignedCount int       `json:"assigned_count"`
	CreatedAt     time.Time `json:"created_at"`
}
