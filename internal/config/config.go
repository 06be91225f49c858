package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

const (
	OutputText         = "txt"
	OutputJSON         = "json"
	OutputGoogleSheets = "googlesheets"

	DefaultWorksheetTitle = "New Assignment"

	configFileBase = "gradesplit"
)

// Instructor is a grader and the hours they work
type Instructor struct {
	Name  string  `yaml:"name" validate:"required"`
	Hours float64 `yaml:"hours" validate:"gte=0"`
}

// Config represents the application configuration
type Config struct {
	// Instructors are listed in tie-break order
	Instructors     []Instructor `yaml:"instructors" validate:"required,min=1,dive"`
	Output          string       `yaml:"output" validate:"required,oneof=txt json googlesheets"`
	OutputPath      string       `yaml:"outputPath,omitempty"`
	SheetURL        string       `yaml:"sheetUrl,omitempty" validate:"required_if=Output googlesheets"`
	CredentialsFile string       `yaml:"credentialsFile,omitempty" validate:"required_if=Output googlesheets"`
	WorksheetTitle  string       `yaml:"worksheetTitle,omitempty"`
	Shuffle         bool         `yaml:"shuffle,omitempty"`
	Seed            *int64       `yaml:"seed,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates gradesplit.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "gradesplit.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(FileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, instructor names and the sheet URL
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Instructors))
	positive := false
	for i, instructor := range cfg.Instructors {
		key := model.NormalizeName(instructor.Name)
		if seen[key] {
			return fmt.Errorf("duplicate instructor in instructors[%d]: %s", i, instructor.Name)
		}
		seen[key] = true
		if instructor.Hours > 0 {
			positive = true
		}
	}

	if !positive {
		return fmt.Errorf("config validation failed: at least one instructor must have hours greater than 0")
	}

	if cfg.Output == OutputGoogleSheets {
		if _, err := cfg.SpreadsheetID(); err != nil {
			return fmt.Errorf("invalid sheetUrl: %w", err)
		}
	}

	return nil
}

// Workers converts the instructors into allocation workers, preserving order
func (c *Config) Workers() []model.Worker {
	workers := make([]model.Worker, len(c.Instructors))
	for i, instructor := range c.Instructors {
		workers[i] = model.Worker{ID: instructor.Name, Weight: instructor.Hours}
	}
	return workers
}

// InstructorNames returns every configured instructor name, including those with 0 hours
func (c *Config) InstructorNames() []string {
	names := make([]string, len(c.Instructors))
	for i, instructor := range c.Instructors {
		names[i] = instructor.Name
	}
	return names
}

// ResolvedOutputPath returns the configured output path or partition.<ext>
func (c *Config) ResolvedOutputPath() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	return "partition." + c.Output
}

// ResolvedWorksheetTitle returns the configured worksheet title or the default
func (c *Config) ResolvedWorksheetTitle() string {
	if c.WorksheetTitle != "" {
		return c.WorksheetTitle
	}
	return DefaultWorksheetTitle
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
var bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// SpreadsheetID extracts the spreadsheet ID from SheetURL
// A bare spreadsheet ID is also accepted
func (c *Config) SpreadsheetID() (string, error) {
	sheetURL := strings.TrimSpace(c.SheetURL)
	if sheetURL == "" {
		return "", fmt.Errorf("sheetUrl is empty")
	}

	if match := spreadsheetIDPattern.FindStringSubmatch(sheetURL); match != nil {
		return match[1], nil
	}

	if bareIDPattern.MatchString(sheetURL) {
		return sheetURL, nil
	}

	return "", fmt.Errorf("no spreadsheet ID found in %q", sheetURL)
}

// FileName returns the config file name for the given environment
func FileName(env string) string {
	if env == "" {
		return configFileBase + ".yaml"
	}
	return configFileBase + "." + env + ".yaml"
}

// Template returns the sample configuration written by the setup command
func Template() *Config {
	return &Config{
		Instructors: []Instructor{
			{Name: "John Doe", Hours: 20},
			{Name: "Jane Doe", Hours: 15},
		},
		Output: OutputText,
	}
}

// WriteTemplate writes the sample configuration to path
// It refuses to overwrite an existing file
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	data, err := yaml.Marshal(Template())
	if err != nil {
		return fmt.Errorf("failed to marshal config template: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
