package verbs

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabctl/tabctl/internal/diagnostics"
	"github.com/tabctl/tabctl/internal/stepper"
	"github.com/tabctl/tabctl/internal/steptransformer"
	"github.com/tabctl/tabctl/internal/transformer"
)

// NewStepCommand builds the `step` subcommand: -a/-f/-g/-d/-F exactly as
// spec.md §6 names them. Construction-time validation failures are
// reported before any records flow: an unknown stepper name as
// diagnostics.KindLookup, a malformed -d alpha as diagnostics.KindValue.
func NewStepCommand(deps Deps) *cobra.Command {
	var (
		steppers []string
		fields   []string
		groupBy  []string
		decay    []string
		useFloat bool
	)

	cmd := &cobra.Command{
		Use:   "step -a steppers -f fields [-g group-by] [-d alphas] [-F]",
		Short: "Apply one or more stateful per-field steppers to a record stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := steptransformer.Config{
				StepperNames:  splitCommaLists(steppers),
				ValueFields:   splitCommaLists(fields),
				GroupByFields: splitCommaLists(groupBy),
				DecayAlphas:   splitCommaLists(decay),
				UseFloatZero:  useFloat,
				Policy:        deps.RunCtx.Policy,
			}
			inner, err := steptransformer.New(cfg)
			if err != nil {
				kind := diagnostics.KindLookup
				var decayErr *stepper.DecayAlphaError
				if errors.As(err, &decayErr) {
					kind = diagnostics.KindValue
				}
				deps.Reporter.Fatalf(kind, diagnostics.Pos{}, "%s", err)
				return err
			}
			stage := transformer.NewStepTransformer(inner).WithMetrics(deps.Metrics)
			return deps.runPipeline(cmd.Context(), stage, false)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&steppers, "steppers", "a", nil, "comma-separated stepper names (required)")
	flags.StringArrayVarP(&fields, "fields", "f", nil, "comma-separated value field names (required)")
	flags.StringArrayVarP(&groupBy, "group-by", "g", nil, "comma-separated group-by field names")
	flags.StringArrayVarP(&decay, "decay", "d", nil, `decay alpha parameters (default "0.5")`)
	flags.BoolVarP(&useFloat, "float-zero", "F", false, "force floating-point for integer-capable steppers")
	_ = cmd.MarkFlagRequired("steppers")
	_ = cmd.MarkFlagRequired("fields")

	return cmd
}

// splitCommaLists flattens pflag's repeated -a x -a y and single -a x,y
// forms into one name list, matching spec.md §6's "comma-separated" flags
// while still letting pflag's StringArrayVarP accept either.
func splitCommaLists(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, strings.Split(r, ",")...)
	}
	return out
}
