package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"dispatchmatch/internal/config"
	"dispatchmatch/internal/domain"
	sqlitestore "dispatchmatch/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: ~/.dispatchmatch/config.toml)")
	dbFlag := flag.String("db", "", "run-history sqlite path override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = cfg.Dispatch.HistoryDB
	}
	if dbPath == "" {
		dbPath = "data/history.db"
	}

	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Fatalf("open history store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate history store: %v", err)
	}

	app := tview.NewApplication()

	runsTable := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	runsTable.SetTitle("Runs (F5 refresh, F10 quit)").SetBorder(true)

	decisionsTable := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)
	decisionsTable.SetTitle("Decisions").SetBorder(true)

	statusView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	statusView.SetBorder(true).SetTitle("Status")
	statusView.SetText(fmt.Sprintf("History db=%s", dbPath))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(runsTable, 0, 1, true).
			AddItem(decisionsTable, 0, 2, false), 0, 12, true).
		AddItem(statusView, 3, 0, false)

	var runs []domain.Run

	showDecisions := func(runID string) {
		decisions, err := store.ListRunDecisions(ctx, runID)
		if err != nil {
			statusView.SetText(fmt.Sprintf("[red]load decisions: %v", err))
			return
		}
		renderDecisionsTable(decisionsTable, decisions)
		statusView.SetText(fmt.Sprintf("Run %s | %d decisions", runID, len(decisions)))
	}

	refresh := func() {
		loaded, err := store.ListRuns(ctx)
		if err != nil {
			statusView.SetText(fmt.Sprintf("[red]load runs: %v", err))
			return
		}
		runs = loaded
		renderRunsTable(runsTable, runs)
		decisionsTable.Clear()
		if len(runs) > 0 {
			runsTable.Select(1, 0)
			showDecisions(runs[0].ID)
		} else {
			statusView.SetText(fmt.Sprintf("History db=%s | no runs recorded yet", dbPath))
		}
	}

	runsTable.SetSelectionChangedFunc(func(row, _ int) {
		index := row - 1
		if index < 0 || index >= len(runs) {
			return
		}
		showDecisions(runs[index].ID)
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			refresh()
			return nil
		case tcell.KeyF10:
			app.Stop()
			return nil
		}
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	refresh()

	if err := app.SetRoot(layout, true).SetFocus(runsTable).Run(); err != nil {
		log.Fatalf("run monitor ui: %v", err)
	}
}

func renderRunsTable(table *tview.Table, runs []domain.Run) {
	table.Clear()
	headers := []string{"Created", "Tasks", "Assigned", "Run"}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for i, r := range runs {
		row := i + 1
		table.SetCell(row, 0, tview.NewTableCell(r.CreatedAt.Local().Format(time.DateTime)))
		table.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("%d", r.TaskCount)))
		table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", r.AssignedCount)))
		table.SetCell(row, 3, tview.NewTableCell(shortID(r.ID)))
	}
}

func renderDecisionsTable(table *tview.Table, decisions []domain.Decision) {
	table.Clear()
	headers := []string{"Task", "Type", "Skill", "Zone", "Agent", "Reason"}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for i, d := range decisions {
		row := i + 1
		agent := d.AssignedAgent
		color := tcell.ColorGreen
		if agent == "" {
			agent = "-"
			color = tcell.ColorRed
		}
		table.SetCell(row, 0, tview.NewTableCell(d.TaskID))
		table.SetCell(row, 1, tview.NewTableCell(d.TaskType))
		table.SetCell(row, 2, tview.NewTableCell(d.RequiredSkill))
		table.SetCell(row, 3, tview.NewTableCell(d.Zone))
		table.SetCell(row, 4, tview.NewTableCell(agent).SetTextColor(color))
		table.SetCell(row, 5, tview.NewTableCell(d.Reason))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
