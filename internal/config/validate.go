// Package config provides configuration models and helpers for vlingest.
//
// This file adds a lightweight linter for Pipeline and Study values. It
// performs static checks and returns a list of issues (errors and warnings)
// that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "sources[1].sheet"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// StorageKinds are the sink kinds the CLI registers.
var StorageKinds = []string{"csv", "sqlite", "postgres", "mssql"}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	if strings.TrimSpace(p.DataDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "data_dir",
			Message:  "data_dir is empty; study sources resolve against the working directory",
		})
	}
	issues = append(issues, validateStudyRefs(p.Studies)...)
	issues = append(issues, validateCoerce(p.Coerce)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

func validateStudyRefs(refs []StudyRef) []Issue {
	var issues []Issue
	if len(refs) == 0 {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "studies",
			Message:  "no studies listed; every embedded study will run",
		})
	}
	seen := map[string]int{}
	for i, r := range refs {
		path := fmt.Sprintf("studies[%d]", i)
		if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "study needs a name or a descriptor path",
			})
			continue
		}
		key := r.Name + "|" + r.Path
		if j, dup := seen[key]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("duplicate of studies[%d]; its rows will be loaded twice", j),
			})
		}
		seen[key] = i
	}
	return issues
}

func validateCoerce(c CoerceConfig) []Issue {
	if c.NullToken != "" && !c.StringifyNulls {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "coerce.null_token",
			Message:  "null_token has no effect unless stringify_nulls is true",
		}}
	}
	return nil
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}
	known := false
	for _, k := range StorageKinds {
		if k == s.Kind {
			known = true
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if s.Kind != "csv" && strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty for database backends",
		})
	}
	if s.Kind == "csv" && s.DB.AutoCreateTable {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.auto_create_table",
			Message:  "auto_create_table is ignored by the csv backend",
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}
	return issues
}

// ValidateStudy performs static validation of a study descriptor. Step kinds
// and options are checked when the study is compiled, not here.
func ValidateStudy(s Study) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.StudyID) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "study_id",
			Message:  "study_id must not be empty",
		})
	}
	if strings.TrimSpace(s.DOI) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "doi",
			Message:  "doi is empty; output rows will carry no publication reference",
		})
	}
	if len(s.Sources) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		})
	}
	for i, src := range s.Sources {
		path := fmt.Sprintf("sources[%d]", i)
		if strings.TrimSpace(src.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".path",
				Message:  "source path must not be empty",
			})
			continue
		}
		switch src.ResolvedFormat() {
		case FormatCSV:
			if src.Sheet != "" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".sheet",
					Message:  "sheet is ignored for csv sources",
				})
			}
		case FormatXLSX:
			if src.Comma != "" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".comma",
					Message:  "comma is ignored for xlsx sources",
				})
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".format",
				Message:  fmt.Sprintf("cannot determine format of %q; set format to csv or xlsx", src.Path),
			})
		}
	}
	for i, c := range s.Select {
		if strings.TrimSpace(c) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("select[%d]", i),
				Message:  "select entries must not be empty",
			})
		}
	}
	for i, t := range s.Steps {
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("steps[%d].kind", i),
				Message:  "step kind must not be empty",
			})
		}
	}
	return issues
}
