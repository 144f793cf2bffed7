package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/spf13/cobra"
)

type handshakeResult struct {
	Proposals []string `json:"proposals" yaml:"proposals"`
	Bytes     string   `json:"bytes" yaml:"bytes"`
}

func (c *cli) handshakeCmd() *cobra.Command {
	var propose []string
	cmd := &cobra.Command{
		Use:     "handshake",
		Short:   "Print the connection preamble and version proposals",
		Example: `  boltwire handshake --propose 5.4:4 --propose 4.4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proposals := frame.DefaultProposals()
			if len(propose) > 0 {
				proposals = make([]frame.Proposal, 0, len(propose))
				for _, raw := range propose {
					p, err := parseProposal(raw)
					if err != nil {
						return err
					}
					proposals = append(proposals, p)
				}
			}
			buf, err := frame.EncodeHandshake(proposals...)
			if err != nil {
				return err
			}
			res := handshakeResult{Bytes: hex.EncodeToString(buf)}
			for _, p := range proposals {
				res.Proposals = append(res.Proposals, p.String())
			}
			return c.print(cmd, res)
		},
	}
	cmd.Flags().StringArrayVar(&propose, "propose", nil, "version proposal major.minor[:range], in preference order (max 4)")
	return cmd
}

func parseProposal(raw string) (frame.Proposal, error) {
	ver, rng, hasRange := strings.Cut(raw, ":")
	v, err := schema.ParseVersion(ver)
	if err != nil {
		return frame.Proposal{}, err
	}
	p := frame.Proposal{Version: v}
	if hasRange {
		n, err := strconv.ParseUint(rng, 10, 8)
		if err != nil {
			return frame.Proposal{}, fmt.Errorf("invalid proposal range %q", raw)
		}
		p.Range = uint8(n)
	}
	return p, nil
}
