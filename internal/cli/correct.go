package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	api "github.com/tankops/bath-planner/api/v1alpha1"
)

// BathOptions describes the measured state of a bath.
type BathOptions struct {
	Volume  float64
	Current []string
	Targets []string
}

func (o *BathOptions) Bind(fs *pflag.FlagSet) {
	fs.Float64Var(&o.Volume, "volume", o.Volume, "Current bath volume in liters.")
	fs.StringArrayVar(&o.Current, "set", o.Current, "Measured concentration as ID=VALUE. Repeat for every chemical.")
	fs.StringArrayVar(&o.Targets, "target", o.Targets, "Override the target of a chemical as ID=VALUE.")
}

func (o *BathOptions) Validate() error {
	if o.Volume < 0 {
		return fmt.Errorf("volume must not be negative")
	}
	if len(o.Current) == 0 {
		return fmt.Errorf("at least one --set ID=VALUE is required")
	}
	if _, err := parseValues("set", o.Current); err != nil {
		return err
	}
	_, err := parseValues("target", o.Targets)
	return err
}

func (o *BathOptions) values() (current, targets map[string]float64, err error) {
	if current, err = parseValues("set", o.Current); err != nil {
		return nil, nil, err
	}
	if targets, err = parseValues("target", o.Targets); err != nil {
		return nil, nil, err
	}
	return current, targets, nil
}

type CorrectOptions struct {
	GlobalOptions
	BathOptions

	Makeup []string
	Output string
}

func DefaultCorrectOptions() *CorrectOptions {
	return &CorrectOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdCorrect() *cobra.Command {
	o := DefaultCorrectOptions()
	cmd := &cobra.Command{
		Use:     "correct NAME --volume LITERS --set ID=VALUE...",
		Short:   "Calculate the additions that bring a bath back to its targets.",
		Example: "  bathctl correct \"Module 3\" --volume 120 --set A=130 --set B=58",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *CorrectOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	o.BathOptions.Bind(fs)

	fs.StringArrayVar(&o.Makeup, "makeup", o.Makeup, "Override the makeup concentration of a chemical as ID=VALUE.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
}

func (o *CorrectOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if err := o.BathOptions.Validate(); err != nil {
		return err
	}
	if _, err := parseValues("makeup", o.Makeup); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *CorrectOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	current, targets, err := o.values()
	if err != nil {
		return err
	}
	makeup, err := parseValues("makeup", o.Makeup)
	if err != nil {
		return err
	}

	result, err := o.Client().Correct(ctx, args[0], api.CorrectionRequest{
		CurrentVolume: o.Volume,
		Current:       current,
		Targets:       targets,
		Makeup:        makeup,
	})
	if err != nil {
		return fmt.Errorf("correcting %s: %w", args[0], err)
	}
	return printResource(w, o.Output, result, func(w io.Writer) { printCorrectionTable(w, *result) })
}

func printCorrectionTable(out io.Writer, r api.CorrectionResult) {
	fmt.Fprintf(out, "%s: %s\n", r.Status, r.Message)

	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ADD\tAMOUNT")
	fmt.Fprintf(w, "water\t%s L\n", formatFloat(r.AddWater))
	fmt.Fprintf(w, "makeup\t%s L\n", formatFloat(r.AddMakeup))
	for _, a := range r.Additions {
		fmt.Fprintf(w, "%s\t%s %s\n", a.Name, formatFloat(a.Amount), a.AmountUnit)
	}
	fmt.Fprintf(w, "final volume\t%s L\n", formatFloat(r.FinalVolume))
	w.Flush()

	printChemicalStates(out, r.Chemicals)
}

func printChemicalStates(out io.Writer, states []api.ChemicalState) {
	if len(states) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ID\tTARGET\tBEFORE\tAFTER\tGREEN ZONE")
	for _, s := range states {
		zone := "no"
		if s.InGreenZone {
			zone = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.InternalId, formatFloat(s.Target), formatFloat(s.Initial), formatFloat(s.Final), zone)
	}
	w.Flush()
}
