package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/boltwire/internal/inspect"
	"github.com/spf13/cobra"
)

func (c *cli) classifyCmd() *cobra.Command {
	var covers string
	cmd := &cobra.Command{
		Use:   "classify <json-value>",
		Short: "Print the coarse Cypher type of a JSON value",
		Example: `  boltwire classify '[1, 2.5, "x"]'
  boltwire classify 7 --covers NUMBER`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := json.NewDecoder(strings.NewReader(args[0]))
			dec.UseNumber()
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			var (
				res inspect.ClassifyResult
				err error
			)
			if covers != "" {
				res, err = inspect.ClassifyAgainst(raw, covers)
			} else {
				res, err = inspect.Classify(raw)
			}
			if err != nil {
				return err
			}
			return c.print(cmd, res)
		},
	}
	cmd.Flags().StringVar(&covers, "covers", "", "also report whether this type (e.g. NUMBER) covers the value")
	return cmd
}
