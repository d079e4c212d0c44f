package verbs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabctl/tabctl/internal/cst"
	"github.com/tabctl/tabctl/internal/diagnostics"
	"github.com/tabctl/tabctl/internal/output"
	"github.com/tabctl/tabctl/internal/transformer"
	"github.com/tabctl/tabctl/internal/value"
)

// NewPutCommand builds the `put` subcommand (spec.md §6: "accept an
// expression string, parse to AST, build CST, then stream records").
func NewPutCommand(deps Deps) *cobra.Command {
	return newDSLCommand(deps, "put", cst.KindPut, "Evaluate a DSL expression against every record, in place")
}

// NewFilterCommand builds the `filter` subcommand: like put, but the
// program's last statement must reduce to a bare boolean that decides
// whether the record survives (spec.md §6), optionally inverted by -x.
func NewFilterCommand(deps Deps) *cobra.Command {
	return newDSLCommand(deps, "filter", cst.KindFilter, "Keep only records for which a DSL expression evaluates true")
}

func newDSLCommand(deps Deps, use string, kind cst.ProgramKind, short string) *cobra.Command {
	var negate bool
	var policyFlag string

	cmd := &cobra.Command{
		Use:   use + " <expression>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parsePolicyFlag(policyFlag, deps.RunCtx.Policy)
			if err != nil {
				deps.Reporter.Fatalf(diagnostics.KindSemantic, diagnostics.Pos{}, "%s", err)
				return err
			}

			astProg, err := deps.ParseExpr(args[0])
			if err != nil {
				deps.Reporter.Fatalf(diagnostics.KindParse, diagnostics.Pos{}, "%s", err)
				return err
			}

			prog, err := cst.Build(astProg, kind)
			if err != nil {
				deps.Reporter.Fatalf(diagnostics.KindSemantic, diagnostics.Pos{}, "%s", err)
				return err
			}

			router := deps.router(false)
			defer router.Close()

			stage := transformer.NewDSLTransformer(transformer.DSLConfig{
				Program:       prog,
				Policy:        policy,
				NumericFormat: deps.RunCtx.NumericFormat,
				Sink:          output.Sink{Router: router},
				Negate:        negate,
			}).WithMetrics(deps.Metrics)

			src := deps.NewSource(deps.Stdin)
			defer src.Close()

			pipeline := transformer.NewPipeline(stage)
			return pipeline.Run(cmd.Context(), src, transformer.RouterSink{Router: router})
		},
	}

	flags := cmd.Flags()
	if kind == cst.KindFilter {
		flags.BoolVarP(&negate, "negate", "x", false, "invert the filter's keep/drop decision")
	}
	flags.StringVar(&policyFlag, "policy", "", "type-inferencing policy: strings, floats, or ints (default: run context policy)")

	return cmd
}

// parsePolicyFlag resolves the --policy flag ("", "strings", "floats", or
// "ints") against the run context's default policy when the flag is unset.
func parsePolicyFlag(flag string, fallback value.Policy) (value.Policy, error) {
	switch flag {
	case "":
		return fallback, nil
	case "strings":
		return value.PolicyStringsOnly, nil
	case "floats":
		return value.PolicyStringsFloats, nil
	case "ints":
		return value.PolicyStringsFloatsInts, nil
	default:
		return 0, fmt.Errorf("unknown --policy %q (want strings, floats, or ints)", flag)
	}
}
