// Package schema holds the canonical viral-load schema: the fixed, ordered
// list of output columns every study is normalized into, and the split of
// those columns into numeric and string kinds used by type coercion.
//
// The registry is immutable after construction. Accessors return copies so
// callers can never reorder or extend the process-wide schema.
package schema

import "fmt"

// Canonical column names.
const (
	StudyID     = "StudyID"
	PersonID    = "PersonID"
	InfectionID = "InfectionID"
	SampleID    = "SampleID"
	TimeDays    = "TimeDays"

	Symptoms1 = "Symptoms1"
	Symptoms2 = "Symptoms2"
	Symptoms3 = "Symptoms3"
	Symptoms4 = "Symptoms4"

	Comorbidity1 = "Comorbidity1"
	Comorbidity2 = "Comorbidity2"
	Comorbidity3 = "Comorbidity3"
	Comorbidity4 = "Comorbidity4"

	Treatment1 = "Treatment1"
	Treatment2 = "Treatment2"
	Treatment3 = "Treatment3"
	Treatment4 = "Treatment4"

	Hospitalized = "Hospitalized"
	SampleType   = "SampleType"
	AgeRng1      = "AgeRng1"
	AgeRng2      = "AgeRng2"
	Subtype      = "Subtype"
	Platform     = "Platform"
	DOI          = "DOI"
	Log10VL      = "Log10VL"
	Units        = "Units"

	GEmlConversionIntercept = "GEml_conversion_intercept"
	GEmlConversionSlope     = "GEml_conversion_slope"
)

// Kind classifies a canonical column for coercion.
type Kind int

const (
	// KindUnknown is returned for names outside the registry.
	KindUnknown Kind = iota
	// KindNumeric columns hold float64 or null after coercion.
	KindNumeric
	// KindString columns hold text (or null) after coercion.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Registry is an ordered column list with a numeric/string split. Every
// registered column is exactly one of the two kinds.
type Registry struct {
	columns []string
	kinds   map[string]Kind
}

// NewRegistry builds a registry from the ordered column list. Columns named in
// numeric are numeric; the rest are string. It panics when numeric names a
// column that is not in columns or when columns repeats a name, since either
// is a programming error in a static schema definition.
func NewRegistry(columns []string, numeric []string) *Registry {
	r := &Registry{
		columns: append([]string(nil), columns...),
		kinds:   make(map[string]Kind, len(columns)),
	}
	for _, c := range columns {
		if _, dup := r.kinds[c]; dup {
			panic(fmt.Sprintf("schema: duplicate column %q", c))
		}
		r.kinds[c] = KindString
	}
	for _, c := range numeric {
		if _, ok := r.kinds[c]; !ok {
			panic(fmt.Sprintf("schema: numeric column %q is not in the column list", c))
		}
		r.kinds[c] = KindNumeric
	}
	return r
}

// Columns returns the ordered column list.
func (r *Registry) Columns() []string {
	return append([]string(nil), r.columns...)
}

// NumericColumns returns the numeric subset in schema order.
func (r *Registry) NumericColumns() []string { return r.ofKind(KindNumeric) }

// StringColumns returns the string subset in schema order.
func (r *Registry) StringColumns() []string { return r.ofKind(KindString) }

// Has reports whether name is a registered column.
func (r *Registry) Has(name string) bool {
	_, ok := r.kinds[name]
	return ok
}

// Kind returns the coercion kind of name, or KindUnknown.
func (r *Registry) Kind(name string) Kind {
	return r.kinds[name]
}

func (r *Registry) ofKind(k Kind) []string {
	var out []string
	for _, c := range r.columns {
		if r.kinds[c] == k {
			out = append(out, c)
		}
	}
	return out
}

// Canonical is the viral-load output schema.
var Canonical = NewRegistry(
	[]string{
		StudyID, PersonID, InfectionID, SampleID, TimeDays,
		Symptoms1, Symptoms2, Symptoms3, Symptoms4,
		Comorbidity1, Comorbidity2, Comorbidity3, Comorbidity4,
		Treatment1, Treatment2, Treatment3, Treatment4,
		Hospitalized, SampleType, AgeRng1, AgeRng2,
		Subtype, Platform, DOI, Log10VL, Units,
		GEmlConversionIntercept, GEmlConversionSlope,
	},
	[]string{
		TimeDays, AgeRng1, AgeRng2, Log10VL,
		GEmlConversionIntercept, GEmlConversionSlope,
	},
)
