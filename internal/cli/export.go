package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ExportOptions struct {
	GlobalOptions

	Filename string
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdExport() *cobra.Command {
	o := DefaultExportOptions()
	cmd := &cobra.Command{
		Use:   "export NAME -f FILE.xlsx",
		Short: "Download the calculation history of a module as a spreadsheet.",
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

func (o *ExportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Filename, "filename", "f", o.Filename, "Output file. Defaults to NAME-history.xlsx.")
}

func (o *ExportOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if o.Filename == "" {
		o.Filename = args[0] + "-history.xlsx"
	}
	return nil
}

func (o *ExportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if filepath.Ext(o.Filename) != ".xlsx" {
		return fmt.Errorf("output file must have the .xlsx extension")
	}
	return nil
}

func (o *ExportOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	content, err := o.Client().ExportHistory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("exporting history of %s: %w", args[0], err)
	}
	if err := os.WriteFile(o.Filename, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", o.Filename, err)
	}
	fmt.Fprintf(w, "history of %s written to %s\n", args[0], o.Filename)
	return nil
}
