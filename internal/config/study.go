package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Study is a declarative per-study descriptor. One generic executor turns any
// descriptor into canonical records:
//
//	parse sources -> select raw columns -> steps -> StudyID/DOI -> enforce -> coerce
type Study struct {
	StudyID     string `json:"study_id" yaml:"study_id"`
	DOI         string `json:"doi" yaml:"doi"`
	Description string `json:"description" yaml:"description"`

	// Sources are parsed independently and concatenated row-wise.
	Sources []StudySource `json:"sources" yaml:"sources"`

	// Select lists the raw columns kept after parsing. Empty keeps all.
	Select []string `json:"select" yaml:"select"`

	// SelectOptional keeps only the Select columns that are present instead of
	// failing on a missing one.
	SelectOptional bool `json:"select_optional" yaml:"select_optional"`

	// Steps is the ordered transformation chain.
	Steps []Transform `json:"steps" yaml:"steps"`
}

// StudySource is one raw input file (or glob of files) of a study.
type StudySource struct {
	// Path is relative to the pipeline's data directory.
	Path string `json:"path" yaml:"path"`

	// Format is csv or xlsx. Empty infers it from the file extension.
	Format string `json:"format" yaml:"format"`

	// Sheet names the workbook sheet for xlsx. Empty uses the first sheet.
	Sheet string `json:"sheet" yaml:"sheet"`

	// Comma is the CSV delimiter. Defaults to ",".
	Comma string `json:"comma" yaml:"comma"`

	// Glob expands Path as a filepath.Match pattern; every match is parsed
	// in lexical order.
	Glob bool `json:"glob" yaml:"glob"`

	// SourceColumn, when set, receives the base name of the parsed file.
	SourceColumn string `json:"source_column" yaml:"source_column"`

	// KeepNullTokens keeps spellings such as "NA" or "NaN" as text instead of
	// reading them as null.
	KeepNullTokens bool `json:"keep_null_tokens" yaml:"keep_null_tokens"`

	// Assign sets constant columns on every row parsed from this source.
	Assign map[string]any `json:"assign" yaml:"assign"`
}

// Source formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ResolvedFormat returns Format, or the format implied by the path extension.
// It returns "" when neither is known.
func (s StudySource) ResolvedFormat() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return ""
}

// DecodeStudy decodes a study descriptor. name selects the decoder by
// extension and is used in error messages.
func DecodeStudy(b []byte, name string) (Study, error) {
	var s Study
	if err := decode(b, name, &s); err != nil {
		return s, fmt.Errorf("decode study %s: %w", name, err)
	}
	return s, nil
}
