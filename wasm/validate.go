package wasm

import (
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/wasm-inspect/errors"
)

// Rule is one structural check over a decoded module. Check reports every
// violation it finds rather than stopping at the first.
type Rule interface {
	Name() string
	Check(m *Module, report func(Violation))
}

// Violation describes one failed check.
type Violation struct {
	Rule    string
	Detail  string
	Kind    errors.Kind
	Index   int
	Section SectionID
	// Import is set when Index refers to the import section rather than
	// Section's own entries.
	Import bool
}

// Err converts the violation to a structured validation error.
func (v Violation) Err() *errors.Error {
	path := []string{v.Section.String(), strconv.Itoa(v.Index)}
	if v.Import {
		path = []string{SectionImport.String(), strconv.Itoa(v.Index)}
	}
	detail := v.Rule + ": " + v.Detail
	var e *errors.Error
	if v.Kind == errors.KindInvalidData {
		e = errors.InvalidData(errors.PhaseValidate, path, detail)
	} else {
		e = errors.New(errors.PhaseValidate, v.Kind).Path(path...).Detail("%s", detail).Build()
	}
	e.Value = v.Rule
	return e
}

func (v Violation) String() string {
	return v.Err().Error()
}

// Report is the outcome of validating one module.
type Report struct {
	Violations []Violation
}

// Valid reports whether no rule found a violation.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

// Err combines all violations into one error, or returns nil.
func (r Report) Err() error {
	var err error
	for _, v := range r.Violations {
		err = multierr.Append(err, v.Err())
	}
	return err
}

// Validator applies a fixed set of rules.
type Validator struct {
	rules []Rule
}

// NewValidator creates a validator over rules, or DefaultRules if none are given.
func NewValidator(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// Validate runs every rule over m.
func (v *Validator) Validate(m *Module) Report {
	var rep Report
	for _, rule := range v.rules {
		rule.Check(m, func(vi Violation) {
			vi.Rule = rule.Name()
			rep.Violations = append(rep.Violations, vi)
		})
	}
	return rep
}

// DefaultRules returns the standard rule set.
func DefaultRules() []Rule {
	return []Rule{
		limitsRule{},
		typeIndexRule{},
		bodyCountRule{},
		exportNamesRule{},
		startRule{},
	}
}

// RuleNames returns the names of the default rules.
func RuleNames() []string {
	rules := DefaultRules()
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name())
	}
	return names
}

// WithoutRules returns the default rules minus the named ones.
func WithoutRules(names ...string) []Rule {
	var out []Rule
	for _, r := range DefaultRules() {
		if !slices.Contains(names, r.Name()) {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the module against the default rules and returns every
// violation combined, or nil.
func (m *Module) Validate() error {
	return NewValidator().Validate(m).Err()
}

// DecodeModuleValidate decodes a WebAssembly binary and validates it.
// This is a convenience function combining DecodeModule and Validate.
func DecodeModuleValidate(data []byte) (*Module, error) {
	m, err := DecodeModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Valid reports whether the limits are consistent: a maximum is present
// exactly when HasMax is set, and is not below the minimum.
func (l Limits) Valid() bool {
	if !l.HasMax {
		return l.Max == nil
	}
	return l.Max != nil && l.Min <= *l.Max
}

// limitsRule checks every memory, table and global entry, imported or
// declared. Globals carry no limits and always pass.
type limitsRule struct{}

func (limitsRule) Name() string { return "limits" }

func (limitsRule) Check(m *Module, report func(Violation)) {
	check := func(entity any, section SectionID, idx int, imported bool) {
		l, ok := entityLimits(entity)
		if !ok || l.Valid() {
			return
		}
		report(Violation{
			Kind:    errors.KindInvalidLimits,
			Section: section,
			Index:   idx,
			Import:  imported,
			Detail:  describeLimits(l),
		})
	}

	for i, imp := range m.Imports {
		switch imp.Desc.Kind {
		case KindTable:
			if imp.Desc.Table != nil {
				check(*imp.Desc.Table, SectionTable, i, true)
			}
		case KindMemory:
			if imp.Desc.Memory != nil {
				check(*imp.Desc.Memory, SectionMemory, i, true)
			}
		case KindGlobal:
			if imp.Desc.Global != nil {
				check(*imp.Desc.Global, SectionGlobal, i, true)
			}
		}
	}
	for i := range m.Tables {
		check(m.Tables[i], SectionTable, i, false)
	}
	for i := range m.Memories {
		check(m.Memories[i], SectionMemory, i, false)
	}
	for i := range m.Globals {
		check(m.Globals[i].Type, SectionGlobal, i, false)
	}
}

func entityLimits(entity any) (Limits, bool) {
	switch e := entity.(type) {
	case TableType:
		return e.Limits, true
	case MemoryType:
		return e.Limits, true
	default:
		return Limits{}, false
	}
}

func describeLimits(l Limits) string {
	switch {
	case l.HasMax && l.Max == nil:
		return "maximum flagged but missing"
	case !l.HasMax && l.Max != nil:
		return fmt.Sprintf("maximum %d present without flag", *l.Max)
	default:
		return fmt.Sprintf("minimum %d exceeds maximum %d", l.Min, *l.Max)
	}
}

// typeIndexRule checks that declared and imported functions reference
// existing types.
type typeIndexRule struct{}

func (typeIndexRule) Name() string { return "type-index" }

func (typeIndexRule) Check(m *Module, report func(Violation)) {
	numTypes := uint32(len(m.Types))
	for i, typeIdx := range m.Funcs {
		if typeIdx >= numTypes {
			report(Violation{
				Kind:    errors.KindOutOfBounds,
				Section: SectionFunction,
				Index:   i,
				Detail:  fmt.Sprintf("type index %d out of range (%d types)", typeIdx, numTypes),
			})
		}
	}
	for i, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc && imp.Desc.TypeIdx >= numTypes {
			report(Violation{
				Kind:    errors.KindOutOfBounds,
				Section: SectionFunction,
				Index:   i,
				Import:  true,
				Detail:  fmt.Sprintf("%s.%s: type index %d out of range (%d types)", imp.Module, imp.Name, imp.Desc.TypeIdx, numTypes),
			})
		}
	}
}

// bodyCountRule checks that the function and code sections agree in length.
type bodyCountRule struct{}

func (bodyCountRule) Name() string { return "body-count" }

func (bodyCountRule) Check(m *Module, report func(Violation)) {
	if len(m.Code) != len(m.Funcs) {
		report(Violation{
			Kind:    errors.KindInvalidData,
			Section: SectionCode,
			Index:   len(m.Code),
			Detail:  fmt.Sprintf("code section has %d entries but function section has %d", len(m.Code), len(m.Funcs)),
		})
	}
}

// exportNamesRule checks that export names are unique.
type exportNamesRule struct{}

func (exportNamesRule) Name() string { return "export-names" }

func (exportNamesRule) Check(m *Module, report func(Violation)) {
	seen := make(map[string]bool, len(m.Exports))
	for i, exp := range m.Exports {
		if seen[exp.Name] {
			report(Violation{
				Kind:    errors.KindInvalidData,
				Section: SectionExport,
				Index:   i,
				Detail:  fmt.Sprintf("duplicate export name %q", exp.Name),
			})
		}
		seen[exp.Name] = true
	}
}

// startRule checks that the start function exists and takes and returns nothing.
type startRule struct{}

func (startRule) Name() string { return "start" }

func (startRule) Check(m *Module, report func(Violation)) {
	if m.Start == nil {
		return
	}
	idx := *m.Start
	if int(idx) >= m.NumFuncs() {
		report(Violation{
			Kind:    errors.KindOutOfBounds,
			Section: SectionStart,
			Detail:  fmt.Sprintf("function index %d out of range (%d functions)", idx, m.NumFuncs()),
		})
		return
	}
	ft := m.GetFuncType(idx)
	if ft == nil {
		// an unresolvable type is reported by type-index
		return
	}
	if len(ft.Params) != 0 || len(ft.Results) != 0 {
		report(Violation{
			Kind:    errors.KindInvalidData,
			Section: SectionStart,
			Detail:  fmt.Sprintf("start function %d has type %s, want func()", idx, ft),
		})
	}
}
