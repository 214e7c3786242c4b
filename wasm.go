package wasminspect

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
)

// Result is a decoded module and the outcome of validating it.
type Result struct {
	Module *wasm.Module
	Report wasm.Report
	Path   string
}

// Err returns the combined validation violations, or nil.
func (r *Result) Err() error {
	return r.Report.Err()
}

// Inspect decodes data and validates it with rules, or with the default
// rules when none are given. A decode failure is returned as the error;
// validation problems are kept in the Report.
func Inspect(data []byte, rules ...wasm.Rule) (*Result, error) {
	m, err := wasm.DecodeModule(data)
	if err != nil {
		return nil, err
	}
	return &Result{Module: m, Report: wasm.NewValidator(rules...).Validate(m)}, nil
}

// InspectFile is Inspect over a file, decoded without reading it whole.
func InspectFile(path string, rules ...wasm.Rule) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Load("stat "+path, err)
	}

	m, err := wasm.DecodeModuleFrom(f, info.Size())
	if err != nil {
		return nil, errors.WithPath(err, path)
	}
	return &Result{
		Module: m,
		Report: wasm.NewValidator(rules...).Validate(m),
		Path:   path,
	}, nil
}

// InspectFiles inspects paths concurrently, at most limit at a time when
// limit is positive. Results are in path order. The first decode or load
// failure cancels the remaining work and is returned.
func InspectFiles(ctx context.Context, paths []string, limit int, rules ...wasm.Rule) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := InspectFile(path, rules...)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
