package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	api "github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/modulefile"
)

type ApplyOptions struct {
	GlobalOptions

	Filename string
	Output   string
}

func DefaultApplyOptions() *ApplyOptions {
	return &ApplyOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdApply() *cobra.Command {
	o := DefaultApplyOptions()
	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Replace the module configuration of the server with the modules in FILE.",
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

func (o *ApplyOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Filename, "filename", "f", o.Filename, "Modules file to apply (.json, .yaml or .yml).")
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
}

func (o *ApplyOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Filename == "" {
		return fmt.Errorf("a file must be given with -f")
	}
	return validateOutput(o.Output)
}

func (o *ApplyOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	modules, err := loadModules(o.Filename)
	if err != nil {
		return err
	}

	status, err := o.Client().ReplaceSetup(ctx, modules)
	if err != nil {
		return fmt.Errorf("applying %s: %w", o.Filename, err)
	}
	return printResource(w, o.Output, status, func(w io.Writer) { printSetupTable(w, *status) })
}

// loadModules reads and checks a modules file locally before it is sent. The file shares its
// field names with the API documents.
func loadModules(path string) (api.ModuleList, error) {
	modules, err := modulefile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for _, m := range modules {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	doc, err := modulefile.Encode(modules, false)
	if err != nil {
		return nil, err
	}
	var list api.ModuleList
	if err := json.Unmarshal(doc, &list); err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return list, nil
}
