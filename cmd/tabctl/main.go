// Command tabctl streams tabular records through stepper and DSL verbs,
// grounded on funxy's cmd/funxy/main.go shape (parse global flags, build a
// shared context, dispatch to one subcommand) but rebuilt on cobra/pflag
// per adest-aes-scripts' cmd/devshell, rather than funxy's own hand-rolled
// os.Args scanning — see internal/verbs for why.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tabctl/tabctl/internal/ast"
	"github.com/tabctl/tabctl/internal/config"
	"github.com/tabctl/tabctl/internal/diagnostics"
	"github.com/tabctl/tabctl/internal/metrics"
	"github.com/tabctl/tabctl/internal/value"
	"github.com/tabctl/tabctl/internal/verbs"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		policyFlag    string
		ofmtFlag      string
		configPath    string
		verbose       bool
		quiet         bool
		metricsAddr   string
	)

	root := &cobra.Command{
		Use:           "tabctl",
		Short:         "Stream tabular records through stepper and DSL transforms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&policyFlag, "policy", "", "type-inferencing policy: strings, floats, or ints (default: strings-floats-ints)")
	root.PersistentFlags().StringVar(&ofmtFlag, "ofmt", "", "numeric output format (default: $OFMT, else Go's default float formatting)")
	root.PersistentFlags().StringVar(&configPath, "config", "tabctl.yaml", "optional config file (CLI flags and env vars take precedence over it)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log only fatal diagnostics")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address instead of counting in-process only")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		fileCfg, err := loadFileDefaults(configPath)
		if err != nil && configPath != "tabctl.yaml" {
			// An explicitly-named config file that fails to load is fatal;
			// the default path is silently optional (loadFileDefaults already
			// swallows os.IsNotExist, so err here is a real parse failure).
			return err
		}

		policy, err := resolvePolicy(policyFlag)
		if err != nil {
			return err
		}

		ofmt := ofmtFlag
		if ofmt == "" {
			ofmt = config.OFMTFromEnv()
		}
		if ofmt == "" {
			ofmt = fileCfg.OFMT
		}

		runCtx := config.New(progName(), ofmt, policy)

		level := logrus.InfoLevel
		switch {
		case quiet:
			level = logrus.ErrorLevel
		case verbose:
			level = logrus.DebugLevel
		}
		reporter := diagnostics.NewReporter(os.Stderr, level)

		var recorder *metrics.Recorder
		if metricsAddr != "" {
			recorder = metrics.New()
			go serveMetrics(metricsAddr, recorder, reporter)
		}

		deps := verbs.Deps{
			RunCtx:    runCtx,
			Reporter:  reporter,
			Metrics:   recorder,
			Stdin:     os.Stdin,
			Stdout:    colorAwareStdout(),
			Stderr:    os.Stderr,
			NewSource: dkvpSource,
			Encode:    dkvpEncode,
			ParseExpr: unavailableExprParser,
		}

		root.AddCommand(
			verbs.NewStepCommand(deps),
			verbs.NewPutCommand(deps),
			verbs.NewFilterCommand(deps),
		)
		return nil
	}

	return root
}

// resolvePolicy maps the --policy flag to a value.Policy, defaulting to the
// most permissive inferencing policy (spec.md §3's default) when unset.
func resolvePolicy(flag string) (value.Policy, error) {
	switch flag {
	case "":
		return value.PolicyStringsFloatsInts, nil
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

// progName returns argv[0]'s base name for use in usage banners and fatal
// diagnostics (spec.md §6).
func progName() string {
	name := os.Args[0]
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			return name[i+1:]
		}
	}
	return name
}

// colorAwareStdout returns os.Stdout as-is; the isatty check below decides
// whether diagnostics.Reporter should be asked for colorized output in a
// future build, following funxy's own internal/evaluator/builtins_term.go
// pattern (isatty.IsTerminal / isatty.IsCygwinTerminal gate on os.Stdout.Fd()).
// Record output itself is never colorized, so this is currently only a
// terminal-detection hook, not a stream wrapper.
func colorAwareStdout() *os.File {
	_ = isTerminal(os.Stdout)
	return os.Stdout
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// unavailableExprParser is the default ExprParser wired when no external DSL
// lexer/parser is available in this build. put/filter report a parse-error
// diagnostic immediately rather than silently accepting unparseable
// expressions; a production build replaces this field with a real parser
// without touching internal/verbs (spec.md §1 places the lexer/parser out of
// this exercise's core scope).
func unavailableExprParser(src string) (*ast.Program, error) {
	return nil, fmt.Errorf("no DSL expression parser is wired into this build: %q", src)
}

// serveMetrics runs the Prometheus handler until the process exits; a
// listen failure is reported but does not abort the run, since metrics are
// optional instrumentation, never load-bearing for record processing.
func serveMetrics(addr string, recorder *metrics.Recorder, reporter *diagnostics.Reporter) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		reporter.Fatalf(diagnostics.KindIO, diagnostics.Pos{}, "metrics listener on %s: %s", addr, err)
	}
}
