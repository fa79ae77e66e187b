package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dispatchmatch/internal/domain"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestLoadAgents(t *testing.T) {
	path := writeTempCSV(t, "agents.csv",
		"agent_id,skills,zone,is_available,queue_rank\n"+
			"a-01,wiring; inspection,north,TRUE,2\n"+
			"a-02,wiring,south,false,1\n")

	agents, err := LoadAgents(path)
	if err != nil {
		t.Fatalf("load agents: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	first := agents[0]
	if first.ID != "a-01" || first.Zone != "north" || !first.Available || first.QueueRank != 2 {
		t.Fatalf("unexpected first agent: %+v", first)
	}
	if !first.HasSkill("wiring") || !first.HasSkill("inspection") {
		t.Fatalf("skills not parsed from delimited field: %v", first.Skills)
	}
	if agents[1].Available {
		t.Fatalf("case-insensitive false flag not honored")
	}
}

func TestLoadAgentsRejectsMalformedFlag(t *testing.T) {
	path := writeTempCSV(t, "agents.csv",
		"agent_id,skills,zone,is_available,queue_rank\n"+
			"a-01,wiring,north,yes,1\n")
	if _, err := LoadAgents(path); err == nil {
		t.Fatalf("expected error for availability flag %q", "yes")
	}
}

func TestLoadAgentsRejectsBadRank(t *testing.T) {
	path := writeTempCSV(t, "agents.csv",
		"agent_id,skills,zone,is_available,queue_rank\n"+
			"a-01,wiring,north,TRUE,first\n")
	_, err := LoadAgents(path)
	if err == nil {
		t.Fatalf("expected error for non-integer queue_rank")
	}
	if !strings.Contains(err.Error(), "queue_rank") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestLoadAgentsRejectsMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "agents.csv",
		"agent_id,skills,zone,is_available\n"+
			"a-01,wiring,north,TRUE\n")
	if _, err := LoadAgents(path); err == nil {
		t.Fatalf("expected error for missing queue_rank column")
	}
}

func TestLoadTasks(t *testing.T) {
	path := writeTempCSV(t, "tasks.csv",
		"task_id,task_type,required_skill,zone,is_confirmed\n"+
			"t-01,repair,wiring,north,TRUE\n"+
			"t-02,survey,inspection,south,FALSE\n")

	tasks, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if !tasks[0].Confirmed || tasks[1].Confirmed {
		t.Fatalf("confirmation flags not parsed: %+v", tasks)
	}
	if tasks[1].RequiredSkill != "inspection" || tasks[1].Zone != "south" {
		t.Fatalf("unexpected second task: %+v", tasks[1])
	}
}

func TestLoadTasksRejectsMalformedConfirmation(t *testing.T) {
	path := writeTempCSV(t, "tasks.csv",
		"task_id,task_type,required_skill,zone,is_confirmed\n"+
			"t-01,repair,wiring,north,maybe\n")
	if _, err := LoadTasks(path); err == nil {
		t.Fatalf("expected error for confirmation flag %q", "maybe")
	}
}

func TestLoadHandlesReorderedColumns(t *testing.T) {
	path := writeTempCSV(t, "agents.csv",
		"queue_rank,agent_id,zone,skills,is_available\n"+
			"3,a-09,east,plumbing,TRUE\n")
	agents, err := LoadAgents(path)
	if err != nil {
		t.Fatalf("load agents: %v", err)
	}
	if agents[0].ID != "a-09" || agents[0].QueueRank != 3 {
		t.Fatalf("column positions not resolved from header: %+v", agents[0])
	}
}

func TestWriteDecisionsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "decisions.csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("make output dir: %v", err)
	}
	decisions := []domain.Decision{
		{TaskID: "t-01", TaskType: "repair", RequiredSkill: "wiring", Zone: "north",
			AssignedAgent: "a-01", Reason: domain.ReasonConfirmedAssigned},
		{TaskID: "t-02", TaskType: "survey", RequiredSkill: "diving", Zone: "north",
			AssignedAgent: "", Reason: domain.ReasonNoEligibleAgent},
	}
	if err := WriteDecisions(path, decisions); err != nil {
		t.Fatalf("write decisions: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "task_id,task_type,required_skill,zone,assigned_agent,decision_reason" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], domain.ReasonConfirmedAssigned) {
		t.Fatalf("assigned reason missing from row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "t-02,survey,diving,north,,") {
		t.Fatalf("empty sentinel not written for unassigned row: %s", lines[2])
	}
}

func TestParseSkillsDropsEmpties(t *testing.T) {
	set := ParseSkills("wiring; ;inspection;;")
	if len(set) != 2 {
		t.Fatalf("expected 2 skills, got %v", set)
	}
	if !set["wiring"] || !set["inspection"] {
		t.Fatalf("expected wiring and inspection, got %v", set)
	}
}
