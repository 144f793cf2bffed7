package main

import (
	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "0.1.0"

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the boltwire version and supported protocol versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			proposals := frame.DefaultProposals()
			supported := make([]string, 0, len(proposals))
			for _, p := range proposals {
				supported = append(supported, p.String())
			}
			return c.print(cmd, struct {
				Version  string   `json:"version" yaml:"version"`
				Protocol string   `json:"protocol" yaml:"protocol"`
				Offers   []string `json:"offers" yaml:"offers"`
			}{version, c.cfg.Protocol.Version.String(), supported})
		},
	}
}
