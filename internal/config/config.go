// Package config defines the configuration model for vlingest: the pipeline
// file that says which studies to run and where the combined output goes, and
// the study descriptors that say how one study's raw files become canonical
// records.
//
// Both are plain data. Pipeline and study files may be written in YAML
// (.yaml, .yml) or JSON (any other extension); Load and DecodeStudy pick the
// decoder from the file name.
//
// Example pipeline (trimmed):
//
//	job: viral_load
//	data_dir: data
//	studies:
//	  - name: kissler2023
//	  - name: hakki2022
//	storage:
//	  kind: csv
//	  db: { dsn: output/combined_cleaned_data.csv }
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file (e.g.,
// configs/pipelines/*.yaml).
type Pipeline struct {
	// Job names the run for metrics labeling and logs.
	Job string `json:"job" yaml:"job"`

	// DataDir is the base directory every study source path is resolved
	// against. Relative values are resolved against the working directory.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Studies lists the studies to run, in order. An empty list runs every
	// embedded study descriptor.
	Studies []StudyRef `json:"studies" yaml:"studies"`

	Coerce  CoerceConfig  `json:"coerce" yaml:"coerce"`
	Storage Storage       `json:"storage" yaml:"storage"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// StudyRef selects a study descriptor. With Path empty the embedded
// descriptor called Name is used; otherwise the descriptor is read from Path.
type StudyRef struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// CoerceConfig controls the final type coercion applied to every study.
type CoerceConfig struct {
	// Strict turns an unparsable, non-empty numeric cell into a study error
	// instead of a null.
	Strict bool `json:"strict" yaml:"strict"`

	// StringifyNulls writes NullToken into null string cells, reproducing the
	// legacy output where missing text read as "<NA>".
	StringifyNulls bool `json:"stringify_nulls" yaml:"stringify_nulls"`

	// NullToken is the text used by StringifyNulls. Defaults to "<NA>".
	NullToken string `json:"null_token" yaml:"null_token"`
}

// RuntimeConfig controls batching and channel buffer sizes for the loader.
type RuntimeConfig struct {
	BatchSize     int `json:"batch_size" yaml:"batch_size"`
	ChannelBuffer int `json:"channel_buffer" yaml:"channel_buffer"`

	// ContinueOnError skips a failed study instead of aborting the run.
	ContinueOnError bool `json:"continue_on_error" yaml:"continue_on_error"`
}

// Storage selects the sink used to persist the combined table.
type Storage struct {
	// Kind selects the backend: csv, sqlite, postgres, or mssql.
	Kind string `json:"kind" yaml:"kind"`

	DB DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the sink.
type DBConfig struct {
	// DSN is the connection string. For the csv kind it is the output path.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table name. Ignored by the csv kind.
	Table string `json:"table" yaml:"table"`

	// Columns enumerates the destination columns in load order. Empty means
	// the canonical schema.
	Columns []string `json:"columns" yaml:"columns"`

	// AutoCreateTable creates the destination table from the canonical schema
	// before loading.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Transform defines a single step of a study's transformation chain.
type Transform struct {
	// Kind selects the builtin step (e.g., "rename", "melt", "rebaseline").
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the selected step.
	Options Options `json:"options" yaml:"options"`
}

// Load reads a pipeline file from path.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}
	return DecodePipeline(b, path)
}

// DecodePipeline decodes a pipeline file's bytes; name selects YAML or JSON.
func DecodePipeline(b []byte, name string) (Pipeline, error) {
	var p Pipeline
	if err := decode(b, name, &p); err != nil {
		return p, fmt.Errorf("decode config %s: %w", name, err)
	}
	return p, nil
}

// IsYAML reports whether name carries a YAML extension.
func IsYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decode(b []byte, name string, v any) error {
	if IsYAML(name) {
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		return dec.Decode(v)
	}
	return json.Unmarshal(b, v)
}

// Options is a small helper to fetch typed values from decoded JSON or YAML
// maps. It performs only minimal type coercion and returns provided defaults
// when a key is absent or of an unexpected type.
//
// Options is used for step-specific configuration where the shape varies by
// implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64
// and YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Float returns the numeric value for key or def.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	for k, vv := range o.Map(key) {
		if s, ok := vv.(string); ok {
			res[k] = s
		}
	}
	return res
}

// Map returns the object stored at key with its values untouched, or nil.
func (o Options) Map(key string) map[string]any {
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			return m
		case Options:
			return m
		}
	}
	return nil
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Slice returns the array stored at key as a list of nested Options. Elements
// that are not objects are skipped.
func (o Options) Slice(key string) []Options {
	v, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Options, 0, len(v))
	for _, x := range v {
		if m, ok := x.(map[string]any); ok {
			out = append(out, Options(m))
		}
	}
	return out
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a null "options" object
// decodes to a non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var tmp map[string]any
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
