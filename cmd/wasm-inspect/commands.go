package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/internal/reference"
	"github.com/wippyai/wasm-inspect/wasm"
)

func newDumpCmd(a *app) *cobra.Command {
	var code bool
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "List sections and their entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openModule(args[0])
			if err != nil {
				return err
			}
			renderDump(cmd.OutOrStdout(), args[0], m, code)
			return nil
		},
	}
	cmd.Flags().BoolVar(&code, "code", false, "disassemble function bodies")
	return cmd
}

// errInvalid signals that validate printed violations; the message is
// already on stdout.
type errInvalid struct {
	violations int
	diffs      int
}

func (e errInvalid) Error() string {
	return fmt.Sprintf("%d violation(s), %d reference disagreement(s)", e.violations, e.diffs)
}

func newValidateCmd(a *app) *cobra.Command {
	var useReference bool
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Decode a module and check it against the validation rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			m, err := a.openModule(path)
			if err != nil {
				return err
			}

			rules := a.cfg.Rules()
			a.logger.Debug("validating", zap.Int("rules", len(rules)))
			rep := wasm.NewValidator(rules...).Validate(m)

			var diffs []string
			if useReference || a.cfg.Validation.Reference {
				diffs, err = a.crossCheck(cmd, path, m)
				if err != nil {
					return err
				}
			}

			if !renderReport(cmd.OutOrStdout(), path, rep, diffs) {
				return errInvalid{violations: len(rep.Violations), diffs: len(diffs)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useReference, "reference", false, "also compile with wazero and compare function signatures")
	return cmd
}

func (a *app) crossCheck(cmd *cobra.Command, path string, m *wasm.Module) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}

	ctx := cmd.Context()
	c := reference.New(ctx, a.logger.Named("reference"))
	defer c.Close(ctx)

	summary, err := c.Compile(ctx, data)
	if err != nil {
		return []string{err.Error()}, nil
	}
	return reference.Compare(m, summary), nil
}

func newNamesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "names FILE",
		Short: "Print the decoded name section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openModule(args[0])
			if err != nil {
				return err
			}
			renderNames(cmd.OutOrStdout(), m)
			return nil
		},
	}
}
