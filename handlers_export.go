package main

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gfmachado/painel/internal/gridfilter"
	"github.com/gfmachado/painel/internal/model"
)

// handleExportCSV downloads the filtered grid as a spreadsheet. The
// filter comes from the same query parameters as the grid itself.
func handleExportCSV(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	now := time.Now()
	tasks := gridfilter.Apply(workspaceTasks(ws.ID), buildFilter(r.URL.Query()), now)
	names := memberNameMap(ws.ID)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=tarefas-%s.csv", now.Format("2006-01-02")))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Descrição", "Projeto", "Setor", "Tipo", "Prioridade", "Status",
		"Data Conclusão", "Data Prevista", "Executor", "Situação"})
	for _, t := range tasks {
		cw.Write([]string{
			t.Name,
			t.ProjectName,
			t.Sector,
			t.TaskType,
			model.PriorityLabels[t.Priority],
			t.Status,
			t.CompletionDate,
			t.EffectiveDueDate(),
			executorNames(t, names),
			gridfilter.Situation(t, now),
		})
	}
	cw.Flush()
}

func executorNames(t model.Task, names map[string]string) string {
	var out []string
	for _, id := range t.ExecutorIDs {
		if n := names[id]; n != "" {
			out = append(out, n)
		} else {
			out = append(out, id)
		}
	}
	return strings.Join(out, ", ")
}
