package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dispatchmatch/internal/domain"
)

var (
	agentColumns    = []string{"agent_id", "skills", "zone", "is_available", "queue_rank"}
	taskColumns     = []string{"task_id", "task_type", "required_skill", "zone", "is_confirmed"}
	decisionColumns = []string{"task_id", "task_type", "required_skill", "zone", "assigned_agent", "decision_reason"}
)

// LoadAgents reads the agent roster CSV. Rows appear in file order; the
// dispatch service sorts by queue rank. Malformed flags or ranks abort the
// load rather than defaulting, since a silently guessed value would skew
// assignment fairness.
func LoadAgents(path string) ([]*domain.Agent, error) {
	rows, index, err := readTable(path, agentColumns)
	if err != nil {
		return nil, fmt.Errorf("load agents %s: %w", path, err)
	}

	agents := make([]*domain.Agent, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // 1-based, after the header
		id := strings.TrimSpace(row[index["agent_id"]])
		if id == "" {
			return nil, fmt.Errorf("load agents %s: line %d: empty agent_id", path, line)
		}
		available, err := parseFlag(row[index["is_available"]])
		if err != nil {
			return nil, fmt.Errorf("load agents %s: line %d: is_available: %w", path, line, err)
		}
		rank, err := strconv.Atoi(strings.TrimSpace(row[index["queue_rank"]]))
		if err != nil {
			return nil, fmt.Errorf("load agents %s: line %d: queue_rank %q is not an integer", path, line, row[index["queue_rank"]])
		}
		agents = append(agents, &domain.Agent{
			ID:        id,
			Skills:    ParseSkills(row[index["skills"]]),
			Zone:      strings.TrimSpace(row[index["zone"]]),
			Available: available,
			QueueRank: rank,
		})
	}
	return agents, nil
}

// LoadTasks reads the task list CSV in file order.
func LoadTasks(path string) ([]domain.Task, error) {
	rows, index, err := readTable(path, taskColumns)
	if err != nil {
		return nil, fmt.Errorf("load tasks %s: %w", path, err)
	}

	tasks := make([]domain.Task, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		id := strings.TrimSpace(row[index["task_id"]])
		if id == "" {
			return nil, fmt.Errorf("load tasks %s: line %d: empty task_id", path, line)
		}
		confirmed, err := parseFlag(row[index["is_confirmed"]])
		if err != nil {
			return nil, fmt.Errorf("load tasks %s: line %d: is_confirmed: %w", path, line, err)
		}
		tasks = append(tasks, domain.Task{
			ID:            id,
			Type:          strings.TrimSpace(row[index["task_type"]]),
			RequiredSkill: strings.TrimSpace(row[index["required_skill"]]),
			Zone:          strings.TrimSpace(row[index["zone"]]),
			Confirmed:     confirmed,
		})
	}
	return tasks, nil
}

// WriteDecisions writes the full decision table at once. Callers only
// reach this after a run has completed, so a partial batch is never
// persisted.
func WriteDecisions(path string, decisions []domain.Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write decisions %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(decisionColumns); err != nil {
		return fmt.Errorf("write decisions %s: header: %w", path, err)
	}
	for _, d := range decisions {
		row := []string{d.TaskID, d.TaskType, d.RequiredSkill, d.Zone, d.AssignedAgent, d.Reason}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write decisions %s: task %s: %w", path, d.TaskID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write decisions %s: flush: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write decisions %s: close: %w", path, err)
	}
	return nil
}

// ParseSkills splits the ';'-delimited skill field into a membership set,
// trimming whitespace and dropping empty entries.
func ParseSkills(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Split(raw, ";") {
		s = strings.TrimSpace(s)
		if s != "" {
			set[s] = true
		}
	}
	return set
}

// parseFlag accepts only TRUE/FALSE, case-insensitive. Anything else is a
// malformed record.
func parseFlag(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("value %q is not TRUE or FALSE", raw)
	}
}

// readTable reads a CSV file and resolves the required column positions
// from its header, so column order in the file does not matter.
func readTable(path string, required []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("missing header row")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return records[1:], index, nil
}
