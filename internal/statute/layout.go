package statute

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout designates which sections hold the derived structures.
// Sections that are missing from the loaded text yield empty structures.
type Layout struct {
	Definitions []string
	Penalties   []string
	Rights      []string
	Principles  []string
	Functions   []string
}

// Default section specs for Republic Act No. 10173 (Data Privacy Act of 2012).
const (
	DefaultDefinitionsSpec = "3"
	DefaultPenaltiesSpec   = "25-36"
	DefaultRightsSpec      = "16"
	DefaultPrinciplesSpec  = "11"
	DefaultFunctionsSpec   = "7"
)

// DefaultLayout returns the layout of Republic Act No. 10173.
func DefaultLayout() Layout {
	l, _ := NewLayout(DefaultDefinitionsSpec, DefaultPenaltiesSpec, DefaultRightsSpec, DefaultPrinciplesSpec, DefaultFunctionsSpec)
	return l
}

// NewLayout parses one section spec per structure.
func NewLayout(definitions, penalties, rights, principles, functions string) (Layout, error) {
	var l Layout
	specs := []struct {
		name string
		spec string
		dst  *[]string
	}{
		{"definitions", definitions, &l.Definitions},
		{"penalties", penalties, &l.Penalties},
		{"rights", rights, &l.Rights},
		{"principles", principles, &l.Principles},
		{"functions", functions, &l.Functions},
	}
	for _, s := range specs {
		numbers, err := ParseSectionSpec(s.spec)
		if err != nil {
			return Layout{}, fmt.Errorf("layout %s: %w", s.name, err)
		}
		*s.dst = numbers
	}
	return l, nil
}

// ParseSectionSpec expands a spec such as "25-36,38,4A" into section numbers.
// An empty spec yields no sections.
func ParseSectionSpec(spec string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			out = append(out, part)
			continue
		}

		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid range start in %q", part)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid range end in %q", part)
		}
		if from > to {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		for n := from; n <= to; n++ {
			out = append(out, strconv.Itoa(n))
		}
	}
	return out, nil
}
