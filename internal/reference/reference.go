// Package reference compiles modules with wazero so the decoder's view of a
// module can be checked against an independent implementation.
package reference

import (
	"context"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
)

// Compiler wraps a wazero runtime restricted to WebAssembly 1.0 features.
type Compiler struct {
	runtime wazero.Runtime
	logger  *zap.Logger
}

// Summary is what the reference compiler reports about a module.
type Summary struct {
	// Exports maps exported function names to their signatures.
	Exports map[string]wasm.FuncType
	// Imports lists imported functions as "module.name" in index order.
	Imports []string
}

// New creates a Compiler. The interpreter is used so compilation does not
// depend on the host architecture.
func New(ctx context.Context, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV1)
	return &Compiler{
		runtime: wazero.NewRuntimeWithConfig(ctx, cfg),
		logger:  logger,
	}
}

// Compile compiles data without instantiating it.
func (c *Compiler) Compile(ctx context.Context, data []byte) (*Summary, error) {
	compiled, err := c.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "reference compile")
	}
	defer compiled.Close(ctx)

	s := &Summary{Exports: make(map[string]wasm.FuncType)}
	for name, def := range compiled.ExportedFunctions() {
		s.Exports[name] = signature(def)
	}
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		s.Imports = append(s.Imports, module+"."+name)
	}

	c.logger.Debug("reference compile",
		zap.Int("exports", len(s.Exports)),
		zap.Int("imports", len(s.Imports)))
	return s, nil
}

// Close releases the runtime.
func (c *Compiler) Close(ctx context.Context) error {
	return c.runtime.Close(ctx)
}

func signature(def api.FunctionDefinition) wasm.FuncType {
	ft := wasm.FuncType{
		Params:  make([]wasm.ValType, 0, len(def.ParamTypes())),
		Results: make([]wasm.ValType, 0, len(def.ResultTypes())),
	}
	// wazero's ValueType values are the binary type codes
	for _, t := range def.ParamTypes() {
		ft.Params = append(ft.Params, wasm.ValType(t))
	}
	for _, t := range def.ResultTypes() {
		ft.Results = append(ft.Results, wasm.ValType(t))
	}
	return ft
}

// Compare reports every disagreement between a decoded module and the
// reference summary about imported and exported functions.
func Compare(m *wasm.Module, s *Summary) []string {
	var diffs []string

	var imports []string
	for _, imp := range m.Imports {
		if imp.Desc.Kind == wasm.KindFunc {
			imports = append(imports, imp.Module+"."+imp.Name)
		}
	}
	if !slices.Equal(imports, s.Imports) {
		diffs = append(diffs, fmt.Sprintf("imported functions: decoded %v, reference %v", imports, s.Imports))
	}

	seen := make(map[string]bool)
	for _, exp := range m.Exports {
		if exp.Kind != wasm.KindFunc {
			continue
		}
		seen[exp.Name] = true
		want, ok := s.Exports[exp.Name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("export %q: missing from reference", exp.Name))
			continue
		}
		got := m.GetFuncType(exp.Idx)
		if got == nil {
			diffs = append(diffs, fmt.Sprintf("export %q: no decoded signature for function %d", exp.Name, exp.Idx))
			continue
		}
		if got.String() != want.String() {
			diffs = append(diffs, fmt.Sprintf("export %q: decoded %s, reference %s", exp.Name, got, want))
		}
	}

	names := make([]string, 0, len(s.Exports))
	for name := range s.Exports {
		if !seen[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		diffs = append(diffs, fmt.Sprintf("export %q: missing from decoded module", name))
	}
	return diffs
}
