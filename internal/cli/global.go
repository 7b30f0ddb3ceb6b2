package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tankops/bath-planner/internal/client"
)

type GlobalOptions struct {
	ServerUrl      string
	ConfigFilePath string
	Timeout        time.Duration
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ServerUrl:      "http://localhost:3443",
		ConfigFilePath: client.DefaultConfigPath(),
		Timeout:        30 * time.Second,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the server")
	fs.StringVar(&o.ConfigFilePath, "config", o.ConfigFilePath, "Path to the client config file")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout of a single request")
}

// Complete takes the server address from the config file unless --server-url was given.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("server-url") {
		return nil
	}
	cfg, err := client.ParseConfigFile(o.ConfigFilePath)
	if err != nil {
		return err
	}
	if cfg.Service.Server != "" {
		o.ServerUrl = cfg.Service.Server
	}
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.ServerUrl == "" {
		return fmt.Errorf("server url must not be empty")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (o *GlobalOptions) Client() *client.Client {
	return client.New(o.ServerUrl, o.Timeout)
}
