// Package study turns a declarative study descriptor into canonical records.
//
// Every study goes through the same executor:
//
//	parse sources -> select raw columns -> steps -> StudyID/DOI -> enforce -> coerce
//
// so a new study is a new descriptor file, not new code.
package study

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"vlingest/internal/config"
	"vlingest/internal/datasource"
	"vlingest/internal/datasource/file"
	"vlingest/internal/parser"
	csvparser "vlingest/internal/parser/csv"
	"vlingest/internal/parser/xlsx"
	"vlingest/internal/schema"
	"vlingest/internal/transformer"
	"vlingest/internal/transformer/builtin"
	"vlingest/pkg/records"
)

// Options configures the executor for every compiled study.
type Options struct {
	// Registry is the output schema. Nil means schema.Canonical.
	Registry *schema.Registry

	Coerce config.CoerceConfig

	// Logger receives per-study progress. Nil means zap.L().
	Logger *zap.Logger

	// OnInvalid is called for each non-empty numeric cell nulled by coercion.
	OnInvalid func(study, column string, row int, value any)
}

// Study is a compiled descriptor ready to run.
type Study struct {
	desc  config.Study
	steps transformer.Chain
	reg   *schema.Registry
	opt   Options
	log   *zap.Logger
}

// Compile validates desc and builds its step chain. Validation warnings are
// logged; errors (including unknown step kinds) fail compilation.
func Compile(desc config.Study, opt Options) (*Study, error) {
	if opt.Registry == nil {
		opt.Registry = schema.Canonical
	}
	log := opt.Logger
	if log == nil {
		log = zap.L()
	}
	log = log.With(zap.String("study", desc.StudyID))

	issues := config.ValidateStudy(desc)
	var errs []error
	for _, is := range issues {
		if is.Severity == config.SeverityError {
			errs = append(errs, is)
			continue
		}
		log.Warn("study: descriptor warning", zap.String("path", is.Path), zap.String("msg", is.Message))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("study %q: invalid descriptor: %w", desc.StudyID, errors.Join(errs...))
	}

	steps, err := builtin.BuildChain(desc.Steps)
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", desc.StudyID, err)
	}
	return &Study{desc: desc, steps: steps, reg: opt.Registry, opt: opt, log: log}, nil
}

// ID returns the study identifier.
func (s *Study) ID() string { return s.desc.StudyID }

// Descriptor returns the descriptor the study was compiled from.
func (s *Study) Descriptor() config.Study { return s.desc }

// Run loads the raw inputs under dir and transforms them.
func (s *Study) Run(ctx context.Context, dir file.Dir) (records.Table, error) {
	start := time.Now()
	raw, err := s.Load(ctx, dir)
	if err != nil {
		return records.Table{}, err
	}
	out, err := s.Transform(raw)
	if err != nil {
		return records.Table{}, err
	}
	s.log.Info("study: done",
		zap.Int("raw_rows", raw.Len()),
		zap.Int("rows", out.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Load parses every source of the study and concatenates the results. A
// missing file fails the study with an error matching os.ErrNotExist.
func (s *Study) Load(ctx context.Context, dir file.Dir) (records.Table, error) {
	var parts []records.Table
	for i, src := range s.desc.Sources {
		inputs, err := expand(dir, src)
		if err != nil {
			return records.Table{}, fmt.Errorf("study %q: sources[%d]: %w", s.desc.StudyID, i, err)
		}
		p, err := newParser(src)
		if err != nil {
			return records.Table{}, fmt.Errorf("study %q: sources[%d]: %w", s.desc.StudyID, i, err)
		}
		for _, in := range inputs {
			t, err := s.parseOne(ctx, p, in)
			if err != nil {
				return records.Table{}, fmt.Errorf("study %q: %w", s.desc.StudyID, err)
			}
			attach(&t, src, in.Name())
			parts = append(parts, t)
		}
	}
	return records.Concat(parts...), nil
}

func (s *Study) parseOne(ctx context.Context, p parser.Parser, in datasource.Named) (records.Table, error) {
	rc, err := in.Open(ctx)
	if err != nil {
		return records.Table{}, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			s.log.Warn("study: close input", zap.String("file", in.Name()), zap.Error(cerr))
		}
	}()

	t, skipped, err := p.Parse(rc)
	if err != nil {
		return records.Table{}, fmt.Errorf("parse %s: %w", in.Name(), err)
	}
	if skipped > 0 {
		s.log.Warn("study: skipped malformed rows", zap.String("file", in.Name()), zap.Int("skipped", skipped))
	}
	s.log.Debug("study: parsed", zap.String("file", in.Name()), zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns)))
	return t, nil
}

// Transform applies the study's column selection and steps to raw, stamps
// StudyID and DOI, then enforces and coerces the output schema. The raw
// table's rows may be modified.
func (s *Study) Transform(raw records.Table) (records.Table, error) {
	t := raw
	var err error
	if len(s.desc.Select) > 0 {
		sel := builtin.Select{Columns: s.desc.Select, Optional: s.desc.SelectOptional}
		if t, err = sel.Apply(t); err != nil {
			return records.Table{}, fmt.Errorf("study %q: %w", s.desc.StudyID, err)
		}
	}
	if t, err = s.steps.Apply(t); err != nil {
		return records.Table{}, fmt.Errorf("study %q: %w", s.desc.StudyID, err)
	}

	stamp := builtin.Constant{Values: map[string]any{
		schema.StudyID: s.desc.StudyID,
		schema.DOI:     s.desc.DOI,
	}}
	if t, err = stamp.Apply(t); err != nil {
		return records.Table{}, fmt.Errorf("study %q: %w", s.desc.StudyID, err)
	}

	t = builtin.EnforceSchema(t, s.reg.Columns())

	c := builtin.Coerce{
		Numeric:        s.reg.NumericColumns(),
		String:         s.reg.StringColumns(),
		Strict:         s.opt.Coerce.Strict,
		StringifyNulls: s.opt.Coerce.StringifyNulls,
		NullToken:      s.opt.Coerce.NullToken,
	}
	if s.opt.OnInvalid != nil {
		id := s.desc.StudyID
		c.OnInvalid = func(column string, row int, value any) { s.opt.OnInvalid(id, column, row, value) }
	}
	if t, err = c.Apply(t); err != nil {
		return records.Table{}, fmt.Errorf("study %q: %w", s.desc.StudyID, err)
	}
	return t, nil
}

func expand(dir file.Dir, src config.StudySource) ([]datasource.Named, error) {
	if !src.Glob {
		return []datasource.Named{dir.Local(src.Path)}, nil
	}
	matches, err := dir.Glob(src.Path)
	if err != nil {
		return nil, err
	}
	out := make([]datasource.Named, len(matches))
	for i, m := range matches {
		out[i] = m
	}
	return out, nil
}

func newParser(src config.StudySource) (parser.Parser, error) {
	switch src.ResolvedFormat() {
	case config.FormatCSV:
		comma, err := parseComma(src.Comma)
		if err != nil {
			return nil, err
		}
		return csvparser.NewParser(csvparser.Options{
			HasHeader:  true,
			Comma:      comma,
			TrimSpace:  true,
			NullTokens: !src.KeepNullTokens,
		}), nil
	case config.FormatXLSX:
		return xlsx.NewParser(xlsx.Options{Sheet: src.Sheet, NullTokens: !src.KeepNullTokens}), nil
	}
	return nil, fmt.Errorf("unsupported format %q for %s", src.Format, src.Path)
}

func parseComma(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("comma must be a single character, got %q", s)
	}
	return r, nil
}

// attach applies the source's assign constants (in key order) and source
// column to every row of t.
func attach(t *records.Table, src config.StudySource, name string) {
	keys := make([]string, 0, len(src.Assign))
	for k := range src.Assign {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.AddColumn(k)
		for _, r := range t.Rows {
			r[k] = src.Assign[k]
		}
	}
	if src.SourceColumn != "" {
		t.AddColumn(src.SourceColumn)
		for _, r := range t.Rows {
			r[src.SourceColumn] = name
		}
	}
}
