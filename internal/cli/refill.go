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

type RefillOptions struct {
	GlobalOptions
	BathOptions

	Output string
}

func DefaultRefillOptions() *RefillOptions {
	return &RefillOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdRefill() *cobra.Command {
	o := DefaultRefillOptions()
	cmd := &cobra.Command{
		Use:   "refill NAME --volume LITERS --set ID=VALUE...",
		Short: "Calculate how to top a bath up to its full volume at target concentrations.",
		Args:  cobra.ExactArgs(1),
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

func (o *RefillOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	o.BathOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
}

func (o *RefillOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if err := o.BathOptions.Validate(); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *RefillOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	current, targets, err := o.values()
	if err != nil {
		return err
	}

	result, err := o.Client().Refill(ctx, args[0], api.RefillRequest{
		CurrentVolume: o.Volume,
		Current:       current,
		Targets:       targets,
	})
	if err != nil {
		return fmt.Errorf("refilling %s: %w", args[0], err)
	}
	return printResource(w, o.Output, result, func(w io.Writer) { printRefillTable(w, *result) })
}

func printRefillTable(out io.Writer, r api.RefillResult) {
	fmt.Fprintf(out, "%s: %s\n", r.Status, r.Message)

	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ADD\tAMOUNT")
	fmt.Fprintf(w, "water\t%s L\n", formatFloat(r.AddWater))
	for _, a := range r.Additions {
		fmt.Fprintf(w, "%s\t%s %s\n", a.Name, formatFloat(a.Amount), a.AmountUnit)
	}
	fmt.Fprintf(w, "final volume\t%s L\n", formatFloat(r.FinalVolume))
	w.Flush()
}
