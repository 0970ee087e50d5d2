package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/thinker-go/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	definitionPath string
	strict         bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a thinker definition file",
		Long: `Validate a thinker definition file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Picker type and threshold
  - Scorer and action kinds, composite shapes, evaluator calibration
  - Environment variable references (in strict mode)

Leaf names are structural here; whether they resolve depends on the
registry the embedding program supplies.

Examples:
  # Validate a definition file
  thinker validate -c thirst.yaml

  # Strict validation (fail on missing env vars)
  thinker validate -c thirst.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateDefinition(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.definitionPath, "config", "c", "", "Path to definition file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	return cmd
}

// validateDefinition validates the definition file.
func (a *App) validateDefinition(opts *validateOptions) error {
	if opts.definitionPath == "" {
		return fmt.Errorf("definition file path is required (-c flag)")
	}

	loaderOpts := []config.LoaderOption{
		config.WithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, config.WithStrictEnv(true))
	}

	loader := config.NewLoaderWithOptions(loaderOpts...)
	def, err := loader.LoadFile(opts.definitionPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Definition is valid\n")
	fmt.Fprintf(a.stdout, "  Picker: %s (threshold %.2f)\n", def.Picker.Type, def.Picker.Threshold)
	fmt.Fprintf(a.stdout, "  Choices: %d\n", len(def.Choices))
	for i, c := range def.Choices {
		fmt.Fprintf(a.stdout, "    - [%d] when %s then %s\n", i, describeScorer(&c.When), describeAction(&c.Then))
	}
	if def.Otherwise != nil {
		fmt.Fprintf(a.stdout, "  Otherwise: %s\n", describeAction(def.Otherwise))
	}

	return nil
}

// describeScorer renders a one-line summary of a scorer subtree.
func describeScorer(s *config.ScorerDef) string {
	switch s.Kind {
	case "leaf":
		return fmt.Sprintf("leaf %q", s.Name)
	case "fixed":
		return fmt.Sprintf("fixed %.2f", s.Value)
	case "idle":
		return "idle"
	default:
		return fmt.Sprintf("%s (%d children)", s.Kind, len(s.Children))
	}
}

// describeAction renders a one-line summary of an action subtree.
func describeAction(a *config.ActionDef) string {
	switch a.Kind {
	case "leaf":
		return fmt.Sprintf("leaf %q", a.Name)
	case "noop":
		return "noop"
	default:
		return fmt.Sprintf("%s (%d steps)", a.Kind, len(a.Steps))
	}
}
