package main

import (
	"fmt"

	"github.com/danmuck/boltwire/internal/config"
	"github.com/spf13/cobra"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate and check boltwire config files",
	}

	var (
		writePath string
		force     bool
	)
	template := &cobra.Command{
		Use:   "template [default|dev]",
		Short: "Print or write a starter config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "default"
			if len(args) == 1 {
				kind = args[0]
			}
			if writePath != "" {
				if err := config.WriteTemplate(writePath, kind, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config to %s\n", kind, writePath)
				return nil
			}
			body, err := config.Template(kind)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), body)
			return nil
		},
	}
	template.Flags().StringVar(&writePath, "write", "", "write the template to this path instead of stdout")
	template.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validate := &cobra.Command{
		Use:   "validate <path>",
		Short: "Load a config and report the effective protocol settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return c.print(cmd, map[string]any{
				"valid":             true,
				"addr":              cfg.Server.Addr,
				"version":           cfg.Protocol.Version.String(),
				"max_chunk_size":    cfg.Protocol.MaxChunkSize,
				"max_message_bytes": cfg.Protocol.MaxMessageBytes,
				"write_timeout":     cfg.Protocol.WriteTimeout.String(),
				"log_level":         cfg.Log.Level.String(),
			})
		},
	}

	cmd.AddCommand(template, validate)
	return cmd
}
