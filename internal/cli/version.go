package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	api "github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/pkg/version"
)

type VersionOptions struct {
	GlobalOptions

	Output     string
	ClientOnly bool
}

type versionReport struct {
	Client version.Info `json:"client"`
	Server *api.Info    `json:"server,omitempty"`
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print bathctl and server version information",
		Args:  cobra.NoArgs,
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

func (o *VersionOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
	fs.BoolVar(&o.ClientOnly, "client", o.ClientOnly, "Only print the client version.")
}

func (o *VersionOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

// Run prints the client version. An unreachable server is reported but is not an error.
func (o *VersionOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	report := versionReport{Client: version.Get()}

	var serverErr error
	if !o.ClientOnly {
		report.Server, serverErr = o.Client().Info(ctx)
	}

	return printResource(w, o.Output, report, func(w io.Writer) {
		fmt.Fprintf(w, "Client Version: %s\n", report.Client.String())
		switch {
		case report.Server != nil:
			fmt.Fprintf(w, "Server Version: %s (%s)\n", report.Server.VersionName, report.Server.GitCommit)
		case serverErr != nil:
			fmt.Fprintf(w, "Server Version: unavailable: %v\n", serverErr)
		}
	})
}
