package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatchmatch/internal/config"
	"dispatchmatch/internal/csvio"
	"dispatchmatch/internal/dispatch"
	"dispatchmatch/internal/domain"
	sqlitestore "dispatchmatch/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: ~/.dispatchmatch/config.toml)")
	agentsFlag := flag.String("agents", "", "agents csv path override")
	tasksFlag := flag.String("tasks", "", "tasks csv path override")
	outFlag := flag.String("out", "", "decisions csv output path override")
	dbFlag := flag.String("db", "", "run-history sqlite path override (\"none\" disables)")
	seed := flag.Bool("seed", false, "write sample agents/tasks csv files before running")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	agentsPath := filepath.Clean(firstNonEmpty(*agentsFlag, cfg.Dispatch.AgentsPath, "data/agents.csv"))
	tasksPath := filepath.Clean(firstNonEmpty(*tasksFlag, cfg.Dispatch.TasksPath, "data/tasks.csv"))
	outPath := filepath.Clean(firstNonEmpty(*outFlag, cfg.Dispatch.OutputPath, "data/decisions.csv"))
	dbPath := firstNonEmpty(*dbFlag, cfg.Dispatch.HistoryDB, "data/history.db")

	if *seed {
		if err := bootstrapSeed(agentsPath, tasksPath); err != nil {
			log.Fatalf("seed sample data: %v", err)
		}
		log.Printf("seed data written agents=%s tasks=%s", agentsPath, tasksPath)
	}

	agents, err := csvio.LoadAgents(agentsPath)
	if err != nil {
		log.Fatalf("load agents: %v", err)
	}
	tasks, err := csvio.LoadTasks(tasksPath)
	if err != nil {
		log.Fatalf("load tasks: %v", err)
	}

	svc := dispatch.New(agents, log.Default())
	decisions := svc.Run(tasks)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	if err := csvio.WriteDecisions(outPath, decisions); err != nil {
		log.Fatalf("write decisions: %v", err)
	}
	log.Printf("decisions written out=%s", outPath)

	if dbPath != "none" {
		if err := recordRun(dbPath, agentsPath, tasksPath, outPath, decisions); err != nil {
			log.Fatalf("record run history: %v", err)
		}
	}
}

func recordRun(dbPath, agentsPath, tasksPath, outPath string, decisions []domain.Decision) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	run := domain.Run{
		ID:            uuid.NewString(),
		AgentsPath:    agentsPath,
		TasksPath:     tasksPath,
		OutputPath:    outPath,
		TaskCount:     len(decisions),
		AssignedCount: dispatch.AssignedCount(decisions),
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.RecordRun(ctx, run, decisions); err != nil {
		return err
	}
	log.Printf("run recorded id=%s db=%s", run.ID, dbPath)
	return nil
}

func bootstrapSeed(agentsPath, tasksPath string) error {
	const agentsCSV = `agent_id,skills,zone,is_available,queue_rank
a-01,wiring;inspection,north,TRUE,3
a-02,wiring,north,TRUE,1
a-03,plumbing;wiring,south,TRUE,2
a-04,inspection,south,FALSE,4
a-05,plumbing,north,TRUE,5
`
	const tasksCSV = `task_id,task_type,required_skill,zone,is_confirmed
t-01,repair,wiring,north,TRUE
t-02,repair,wiring,south,TRUE
t-03,survey,inspection,north,FALSE
t-04,survey,plumbing,north,FALSE
t-05,repair,diving,north,FALSE
t-06,survey,plumbing,north,FALSE
`
	for _, item := range []struct {
		path, content string
	}{
		{agentsPath, agentsCSV},
		{tasksPath, tasksCSV},
	} {
		if err := os.MkdirAll(filepath.Dir(item.path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(item.path, []byte(item.content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
