package main

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gfmachado/painel/internal/model"
)

//go:embed templates/*
var templateFS embed.FS

var tmpl *template.Template

func initTemplates() {
	funcMap := template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"statusClass": func(s string) string {
			classes := map[string]string{
				model.StatusBacklog:     "backlog",
				model.StatusPendente:    "pendente",
				model.StatusEmExecucao:  "execucao",
				model.StatusEmValidacao: "validacao",
				model.StatusConcluida:   "concluida",
				model.StatusBloqueada:   "bloqueada",
				model.StatusCancelada:   "cancelada",
			}
			if c, ok := classes[s]; ok {
				return c
			}
			return "backlog"
		},
		"priorityLabel": func(p int) string {
			if l, ok := model.PriorityLabels[p]; ok {
				return l
			}
			return "Média"
		},
		"formatMinutes": formatMinutes,
		"eq": func(a, b any) bool {
			return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
		},
		"dict": func(values ...any) map[string]any {
			d := make(map[string]any)
			for i := 0; i < len(values)-1; i += 2 {
				d[fmt.Sprintf("%v", values[i])] = values[i+1]
			}
			return d
		},
		"join":        strings.Join,
		"sub":         func(a, b int) int { return a - b },
		"ymd":         func(t time.Time) string { return t.Format("2006-01-02") },
		"dayNum":      func(t time.Time) int { return t.Day() },
		"fmtDateTime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
		"fmtDate": func(s string) string {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return t.Format("02/01/2006")
			}
			return s
		},
	}
	tmpl = template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

func renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func formatMinutes(m int) string {
	if m <= 0 {
		return "0min"
	}
	if m < 60 {
		return fmt.Sprintf("%dmin", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dmin", m/60, m%60)
}
