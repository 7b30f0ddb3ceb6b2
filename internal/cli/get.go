package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	api "github.com/tankops/bath-planner/api/v1alpha1"
)

const (
	ModuleKind  = "module"
	SetupKind   = "setup"
	HistoryKind = "history"
)

var (
	pluralKinds = map[string]string{
		ModuleKind:  "modules",
		SetupKind:   "setup",
		HistoryKind: "history",
	}
)

type GetOptions struct {
	GlobalOptions

	Output string
	Kind   string
	Limit  int
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get (modules [NAME] | setup | history NAME)",
		Short: "Display one or many resources.",
		Args:  cobra.RangeArgs(1, 2),
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
	fs.StringVar(&o.Kind, "kind", o.Kind, "Only list history entries of this kind (correction, simulation, refill).")
	fs.IntVar(&o.Limit, "limit", o.Limit, "Maximum number of history entries to list.")
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	kind, name, err := parseKind(args)
	if err != nil {
		return err
	}
	if kind == HistoryKind && name == "" {
		return fmt.Errorf("history requires a module name")
	}
	if kind == SetupKind && name != "" {
		return fmt.Errorf("setup does not take a name")
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	return validateOutput(o.Output)
}

func (o *GetOptions) Run(ctx context.Context, w io.Writer, args []string) error {
	c := o.Client()
	kind, name, _ := parseKind(args)

	switch {
	case kind == ModuleKind && name == "":
		modules, err := c.ListModules(ctx)
		if err != nil {
			return fmt.Errorf("listing modules: %w", err)
		}
		return printResource(w, o.Output, modules, func(w io.Writer) { printModulesTable(w, modules...) })
	case kind == ModuleKind:
		module, err := c.GetModule(ctx, name)
		if err != nil {
			return fmt.Errorf("reading module %s: %w", name, err)
		}
		return printResource(w, o.Output, module, func(w io.Writer) { printModuleTable(w, *module) })
	case kind == SetupKind:
		status, err := c.GetSetup(ctx)
		if err != nil {
			return fmt.Errorf("reading setup: %w", err)
		}
		return printResource(w, o.Output, status, func(w io.Writer) { printSetupTable(w, *status) })
	case kind == HistoryKind:
		history, err := c.History(ctx, name, o.Kind, o.Limit)
		if err != nil {
			return fmt.Errorf("listing history of %s: %w", name, err)
		}
		return printResource(w, o.Output, history, func(w io.Writer) { printHistoryTable(w, history) })
	default:
		return fmt.Errorf("unsupported resource kind: %s", kind)
	}
}

func parseKind(args []string) (string, string, error) {
	kind := singular(args[0])
	if _, ok := pluralKinds[kind]; !ok {
		return "", "", fmt.Errorf("invalid resource kind: %s", args[0])
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	return kind, name, nil
}

func singular(kind string) string {
	for singular, plural := range pluralKinds {
		if kind == plural {
			return singular
		}
	}
	return kind
}

func printModulesTable(out io.Writer, modules ...api.Module) {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tVOLUME\tCHEMICALS")
	for _, m := range modules {
		ids := make([]string, 0, len(m.Chemicals))
		for _, c := range m.Chemicals {
			ids = append(ids, c.InternalId)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.ModuleType, formatFloat(m.TotalVolume), strings.Join(ids, ","))
	}
	w.Flush()
}

func printModuleTable(out io.Writer, m api.Module) {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintf(w, "%s (%s, %s L)\n", m.Name, m.ModuleType, formatFloat(m.TotalVolume))
	fmt.Fprintln(w, "ID\tNAME\tUNIT\tTARGET\tMAKEUP")
	for _, c := range m.Chemicals {
		makeup := "-"
		if c.Makeup != nil {
			makeup = formatFloat(*c.Makeup)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.InternalId, c.Name, c.Unit, formatFloat(c.Target), makeup)
	}
	w.Flush()
}

func printSetupTable(out io.Writer, s api.SetupStatus) {
	if s.Configured {
		fmt.Fprintf(out, "configured: %d module(s)\n", len(s.Modules))
	} else {
		fmt.Fprintln(out, "not configured")
		for _, p := range s.Problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}
	if len(s.Modules) > 0 {
		printModulesTable(out, s.Modules...)
	}
}

func printHistoryTable(out io.Writer, history api.HistoryList) {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ID\tTIME\tKIND\tSTATUS")
	for _, h := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Id, h.CreatedAt.Format("2006-01-02 15:04:05"), h.Kind, h.Status)
	}
	w.Flush()
}
