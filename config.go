package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type SummaryConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type Config struct {
	Port        string   `yaml:"port"`
	DBPath      string   `yaml:"db_path"`
	BaseURL     string   `yaml:"base_url"`
	AdminEmails []string `yaml:"admin_emails"`

	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
	SMTPFrom string `yaml:"smtp_from"`

	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`

	Summary SummaryConfig `yaml:"summary"`
}

var cfg Config

func loadConfig(path string) {
	cfg = Config{
		Port:     "8080",
		DBPath:   "painel.db",
		BaseURL:  "http://localhost:8080",
		LogLevel: "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("No config file found at %s, using defaults", path)
		return
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("parse config %s: %v", path, err)
	}
}
