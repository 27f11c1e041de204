package builtin

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"vlingest/internal/config"
	"vlingest/internal/transformer"
)

// ErrUnknownKind is returned by Build for a step kind with no builtin.
var ErrUnknownKind = errors.New("unknown step kind")

type factory func(o config.Options) (transformer.Transformer, error)

var factories = map[string]factory{
	"select": func(o config.Options) (transformer.Transformer, error) {
		cols := o.StringSlice("columns")
		if len(cols) == 0 {
			return nil, errors.New("columns is required")
		}
		return Select{Columns: cols, Optional: o.Bool("optional", false)}, nil
	},
	"rename": func(o config.Options) (transformer.Transformer, error) {
		m := o.StringMap("map")
		if len(m) == 0 {
			return nil, errors.New("map is required")
		}
		return Rename{Map: m}, nil
	},
	"melt": func(o config.Options) (transformer.Transformer, error) {
		return Melt{
			IDColumns:    o.StringSlice("id_columns"),
			ValueColumns: o.StringSlice("value_columns"),
			VarName:      o.String("var_name", ""),
			ValueName:    o.String("value_name", ""),
		}, nil
	},
	"value_map": func(o config.Options) (transformer.Transformer, error) {
		col := o.String("column", "")
		if col == "" {
			return nil, errors.New("column is required")
		}
		return ValueMap{Column: col, Map: o.Map("map")}, nil
	},
	"lookup": func(o config.Options) (transformer.Transformer, error) {
		from, to := o.String("from", ""), o.String("to", "")
		if from == "" || to == "" {
			return nil, errors.New("from and to are required")
		}
		return Lookup{From: from, To: to, Map: o.Map("map")}, nil
	},
	"constant": func(o config.Options) (transformer.Transformer, error) {
		vals := o.Map("values")
		if len(vals) == 0 {
			return nil, errors.New("values is required")
		}
		return Constant{Values: vals, IfAbsent: o.Bool("if_absent", false)}, nil
	},
	"copy": func(o config.Options) (transformer.Transformer, error) {
		from, to := o.String("from", ""), o.String("to", "")
		if from == "" || to == "" {
			return nil, errors.New("from and to are required")
		}
		return Copy{From: from, To: to}, nil
	},
	"log10": func(o config.Options) (transformer.Transformer, error) {
		to := o.String("to", "")
		if to == "" {
			return nil, errors.New("to is required")
		}
		var srcs []Log10Source
		if col := o.String("from", ""); col != "" {
			srcs = append(srcs, Log10Source{Column: col, Units: o.String("units", "")})
		}
		for _, s := range o.Slice("sources") {
			srcs = append(srcs, Log10Source{Column: s.String("column", ""), Units: s.String("units", "")})
		}
		if len(srcs) == 0 {
			return nil, errors.New("from or sources is required")
		}
		return Log10{
			To:          to,
			Sources:     srcs,
			UnitsColumn: o.String("units_column", "Units"),
			Required:    o.Bool("required", false),
		}, nil
	},
	"mean": func(o config.Options) (transformer.Transformer, error) {
		cols, to := o.StringSlice("columns"), o.String("to", "")
		if len(cols) == 0 || to == "" {
			return nil, errors.New("columns and to are required")
		}
		return Mean{Columns: cols, To: to}, nil
	},
	"null_below": func(o config.Options) (transformer.Transformer, error) {
		col := o.String("column", "")
		if col == "" {
			return nil, errors.New("column is required")
		}
		return NullBelow{Column: col, Limit: o.Float("limit", 0)}, nil
	},
	"regex_replace": func(o config.Options) (transformer.Transformer, error) {
		col, pat := o.String("column", ""), o.String("pattern", "")
		if col == "" || pat == "" {
			return nil, errors.New("column and pattern are required")
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		return RegexReplace{Column: col, Pattern: re, Replacement: o.String("replacement", "")}, nil
	},
	"require": func(o config.Options) (transformer.Transformer, error) {
		cols := o.StringSlice("columns")
		if len(cols) == 0 {
			return nil, errors.New("columns is required")
		}
		return Require{Columns: cols}, nil
	},
	"normalize": func(o config.Options) (transformer.Transformer, error) {
		return Normalize{Columns: o.StringSlice("columns"), Lower: o.Bool("lower", false)}, nil
	},
	"age_range": func(o config.Options) (transformer.Transformer, error) {
		col := o.String("column", "")
		if col == "" {
			return nil, errors.New("column is required")
		}
		return AgeRange{
			Column: col,
			Lower:  o.String("lower", "AgeRng1"),
			Upper:  o.String("upper", "AgeRng2"),
		}, nil
	},
	"rebaseline": func(o config.Options) (transformer.Transformer, error) {
		return Rebaseline{
			Person:      o.String("person", "PersonID"),
			Time:        o.String("time", "TimeDays"),
			Measure:     o.String("measure", "Log10VL"),
			To:          o.String("to", ""),
			KeepInvalid: o.Bool("keep_invalid", false),
		}, nil
	},
}

// Build constructs the builtin step for t. Option errors are wrapped with the
// kind; an unknown kind wraps ErrUnknownKind.
func Build(t config.Transform) (transformer.Transformer, error) {
	f, ok := factories[t.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	opts := t.Options
	if opts == nil {
		opts = config.Options{}
	}
	tr, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Kind, err)
	}
	return tr, nil
}

// BuildChain builds every step in order.
func BuildChain(ts []config.Transform) (transformer.Chain, error) {
	c := make(transformer.Chain, 0, len(ts))
	for i, t := range ts {
		tr, err := Build(t)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		c = append(c, tr)
	}
	return c, nil
}

// Kinds lists the step kinds Build accepts, sorted.
func Kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
