package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the top-level structure of a project import file.
type Document struct {
	Version      string              `json:"version,omitempty" yaml:"version,omitempty"`
	Users        []UserImport        `json:"users,omitempty" yaml:"users,omitempty"`
	Project      ProjectImport       `json:"project" yaml:"project"`
	Stakeholders []StakeholderImport `json:"stakeholders,omitempty" yaml:"stakeholders,omitempty"`
	Risks        []RiskImport        `json:"risks,omitempty" yaml:"risks,omitempty"`
	Tasks        []TaskImport        `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Resources    []ResourceImport    `json:"resources,omitempty" yaml:"resources,omitempty"`
	WorkPackages []WorkPackageImport `json:"work_packages,omitempty" yaml:"work_packages,omitempty"`
}

// UserImport declares a user. Users that already exist (by email) are reused.
type UserImport struct {
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
}

type ProjectImport struct {
	ShortID     string   `json:"short_id" yaml:"short_id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	OwnerEmail  string   `json:"owner_email" yaml:"owner_email"`
	Status      string   `json:"status,omitempty" yaml:"status,omitempty"`
	Deadline    *string  `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	TotalBudget *float64 `json:"total_budget,omitempty" yaml:"total_budget,omitempty"`
}

type StakeholderImport struct {
	UserEmail  string  `json:"user_email" yaml:"user_email"`
	Role       string  `json:"role,omitempty" yaml:"role,omitempty"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

type RiskImport struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Probability float64      `json:"probability" yaml:"probability"`
	Impact      int          `json:"impact" yaml:"impact"`
	OwnerEmail  string       `json:"owner_email,omitempty" yaml:"owner_email,omitempty"`
	Status      string       `json:"status,omitempty" yaml:"status,omitempty"`
	Plans       []PlanImport `json:"plans,omitempty" yaml:"plans,omitempty"`
}

type PlanImport struct {
	Strategy       string `json:"strategy" yaml:"strategy"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	PlannedActions string `json:"planned_actions,omitempty" yaml:"planned_actions,omitempty"`
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
}

// TaskImport uses file-local refs so subtasks can point at their parent.
type TaskImport struct {
	Ref           string   `json:"ref" yaml:"ref"`
	ParentRef     *string  `json:"parent_ref,omitempty" yaml:"parent_ref,omitempty"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	AssigneeEmail string   `json:"assignee_email,omitempty" yaml:"assignee_email,omitempty"`
	Cost          *float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
	Priority      string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Deadline      *string  `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

type ResourceImport struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Total       float64  `json:"total" yaml:"total"`
	Available   *float64 `json:"available,omitempty" yaml:"available,omitempty"`
}

type WorkPackageImport struct {
	Code          string  `json:"code,omitempty" yaml:"code,omitempty"`
	Name          string  `json:"name" yaml:"name"`
	EstimatedCost float64 `json:"estimated_cost,omitempty" yaml:"estimated_cost,omitempty"`
	EstimatedDays int     `json:"estimated_days,omitempty" yaml:"estimated_days,omitempty"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// FormatFromContentType maps an HTTP Content-Type onto a format.
func FormatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "yaml") {
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads, schema-checks and decodes an import file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes data, validates it against the embedded JSON Schema and
// returns the typed document. Semantic checks are done by Validate.
func Parse(data []byte, format Format) (*Document, error) {
	jsonData, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(jsonData); err != nil {
		return nil, err
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &doc, nil
}

// toJSON normalizes YAML input to JSON so one schema serves both formats.
func toJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting yaml to json: %w", err)
	}
	return out, nil
}
