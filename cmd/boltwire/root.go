package main

import (
	"fmt"

	"github.com/danmuck/boltwire/internal/config"
	"github.com/danmuck/boltwire/internal/logging"
	"github.com/danmuck/boltwire/internal/output"
	"github.com/spf13/cobra"
)

// cli holds flag values and the state PersistentPreRunE derives from them.
type cli struct {
	cfgFile      string
	outputFormat string

	cfg       config.Config
	formatter output.Formatter
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "boltwire",
		Short: "Encode and inspect bolt protocol client messages",
		Long: `boltwire writes bolt client messages (HELLO, RUN, PULL, ROUTE and the rest)
as PackStream structs, chunks them for the wire and classifies values by
coarse Cypher type. It can also serve the same operations over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "path to a boltwire TOML config (defaults apply when unset)")
	root.PersistentFlags().StringVarP(&c.outputFormat, "output", "o", "text", "output format: text, json, yaml")

	root.AddCommand(
		c.serveCmd(),
		c.encodeCmd(),
		c.handshakeCmd(),
		c.classifyCmd(),
		c.configCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) setup() error {
	c.cfg = config.Default()
	if c.cfgFile != "" {
		cfg, err := config.Load(c.cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		c.cfg = cfg
	}
	logging.ConfigureWith(c.cfg.LoggingConfig())

	f, err := output.NewFormatter(c.outputFormat)
	if err != nil {
		return err
	}
	c.formatter = f
	return nil
}

func (c *cli) print(cmd *cobra.Command, data any) error {
	out, err := c.formatter.Format(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
