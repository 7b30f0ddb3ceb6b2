package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	api "github.com/tankops/bath-planner/api/v1alpha1"
)

type SimulateOptions struct {
	GlobalOptions

	Volume       float64
	Current      []string
	Makeup       []string
	Water        float64
	MakeupVolume float64
	Chemicals    []string
	Output       string
}

func DefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdSimulate() *cobra.Command {
	o := DefaultSimulateOptions()
	cmd := &cobra.Command{
		Use:     "simulate NAME --volume LITERS --set ID=VALUE... [--water L] [--makeup-volume L] [--add ID=L]",
		Short:   "Show the concentrations a bath ends up with after manual additions.",
		Example: "  bathctl simulate \"Module 3\" --volume 150 --set A=120 --set B=50 --water 50",
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

func (o *SimulateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.Float64Var(&o.Volume, "volume", o.Volume, "Current bath volume in liters.")
	fs.StringArrayVar(&o.Current, "set", o.Current, "Measured concentration as ID=VALUE. Repeat for every chemical.")
	fs.StringArrayVar(&o.Makeup, "makeup", o.Makeup, "Override the makeup concentration of a chemical as ID=VALUE.")
	fs.Float64Var(&o.Water, "water", o.Water, "Liters of water to add.")
	fs.Float64Var(&o.MakeupVolume, "makeup-volume", o.MakeupVolume, "Liters of makeup solution to add.")
	fs.StringArrayVar(&o.Chemicals, "add", o.Chemicals, "Liters of a pure chemical to add as ID=LITERS.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
}

func (o *SimulateOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Volume < 0 || o.Water < 0 || o.MakeupVolume < 0 {
		return fmt.Errorf("volumes must not be negative")
	}
	if len(o.Current) == 0 {
		return fmt.Errorf("at least one --set ID=VALUE is required")
	}
	if _, err := o.request(); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *SimulateOptions) request() (api.SimulationRequest, error) {
	req := api.SimulationRequest{
		CurrentVolume: o.Volume,
		Water:         o.Water,
		MakeupVolume:  o.MakeupVolume,
	}
	var err error
	if req.Current, err = parseValues("set", o.Current); err != nil {
		return req, err
	}
	if req.Makeup, err = parseValues("makeup", o.Makeup); err != nil {
		return req, err
	}
	if req.Chemicals, err = parseValues("add", o.Chemicals); err != nil {
		return req, err
	}
	return req, nil
}

func (o *SimulateOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	req, err := o.request()
	if err != nil {
		return err
	}

	result, err := o.Client().Simulate(ctx, args[0], req)
	if err != nil {
		return fmt.Errorf("simulating %s: %w", args[0], err)
	}
	return printResource(w, o.Output, result, func(w io.Writer) {
		fmt.Fprintf(w, "new volume: %s L\n", formatFloat(result.NewVolume))
		if result.Overflow {
			fmt.Fprintln(w, "warning: the bath overflows its total volume")
		}
		printChemicalStates(w, result.Chemicals)
	})
}
