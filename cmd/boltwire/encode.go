package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/boltwire/internal/inspect"
	"github.com/danmuck/boltwire/internal/logging"
	"github.com/danmuck/boltwire/internal/protocol/message"
	"github.com/spf13/cobra"
)

func (c *cli) encodeCmd() *cobra.Command {
	var boltVersion string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a bolt message and print its bytes",
	}
	cmd.PersistentFlags().StringVar(&boltVersion, "bolt-version", "", "protocol version to validate against (overrides [protocol] version)")

	run := func(cmd *cobra.Command, req inspect.EncodeRequest) error {
		req.Version = boltVersion
		res, err := inspect.Encode(req, c.cfg.ProtocolSessionConfig(), logging.Component("encode"))
		if err != nil {
			return err
		}
		return c.print(cmd, res)
	}

	cmd.AddCommand(
		encodeRouteCmd(run),
		encodeHelloCmd(run),
		encodeRunCmd(run),
		encodePullCmd(run),
		encodeRequestCmd(run),
	)
	return cmd
}

type encodeFunc func(cmd *cobra.Command, req inspect.EncodeRequest) error

func encodeRouteCmd(run encodeFunc) *cobra.Command {
	var (
		routing   []string
		uri       string
		bookmarks []string
		db        string
		impUser   string
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Encode a ROUTE request",
		Example: `  boltwire encode route --routing region=eu --bookmark bm-1 --bookmark bm-2 --db neo4j
  boltwire encode route --routing-uri 'neo4j://db:7687?region=eu'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(routing)
			if err != nil {
				return err
			}
			return run(cmd, inspect.EncodeRequest{
				Message:          "ROUTE",
				Routing:          pairs,
				RoutingURI:       uri,
				Bookmarks:        bookmarks,
				Database:         db,
				ImpersonatedUser: impUser,
			})
		},
	}
	cmd.Flags().StringArrayVar(&routing, "routing", nil, "routing context entry key=value (repeatable)")
	cmd.Flags().StringVar(&uri, "routing-uri", "", "routing URI whose query becomes the routing context")
	cmd.Flags().StringArrayVar(&bookmarks, "bookmark", nil, "bookmark token, sent in flag order (repeatable)")
	cmd.Flags().StringVar(&db, "db", "", "target database; empty sends null before 4.4")
	cmd.Flags().StringVar(&impUser, "imp-user", "", "impersonated user (4.4 and later)")
	return cmd
}

func encodeHelloCmd(run encodeFunc) *cobra.Command {
	var (
		userAgent string
		boltAgent string
		user      string
		password  string
	)
	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Encode a HELLO request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := inspect.EncodeRequest{Message: "HELLO", UserAgent: userAgent, BoltAgent: boltAgent}
			if user != "" {
				req.Auth = message.BasicAuth(user, password, "")
			}
			return run(cmd, req)
		},
	}
	cmd.Flags().StringVar(&userAgent, "user-agent", "boltwire/"+version, "user agent string")
	cmd.Flags().StringVar(&boltAgent, "bolt-agent", "", "bolt_agent product (5.3 and later; defaults to boltwire there)")
	cmd.Flags().StringVar(&user, "user", "", "basic auth principal, sent in HELLO before 5.1 only")
	cmd.Flags().StringVar(&password, "password", "", "basic auth credentials")
	return cmd
}

func encodeRunCmd(run encodeFunc) *cobra.Command {
	var (
		params    []string
		db        string
		mode      string
		timeoutMS int64
		bookmarks []string
	)
	cmd := &cobra.Command{
		Use:     "run <query>",
		Short:   "Encode a RUN request",
		Example: `  boltwire encode run 'MATCH (n) WHERE n.age > $age RETURN n' --param age=30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			return run(cmd, inspect.EncodeRequest{
				Message:    "RUN",
				Query:      args[0],
				Parameters: values,
				Database:   db,
				Mode:       mode,
				TimeoutMS:  timeoutMS,
				Bookmarks:  bookmarks,
			})
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter key=value; value is read as JSON, else as a string")
	cmd.Flags().StringVar(&db, "db", "", "target database")
	cmd.Flags().StringVar(&mode, "mode", "", "access mode: read or write")
	cmd.Flags().Int64Var(&timeoutMS, "timeout-ms", 0, "transaction timeout in milliseconds")
	cmd.Flags().StringArrayVar(&bookmarks, "bookmark", nil, "bookmark token (repeatable)")
	return cmd
}

func encodePullCmd(run encodeFunc) *cobra.Command {
	var n, qid int64
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Encode a PULL request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, inspect.EncodeRequest{Message: "PULL", N: &n, QID: &qid})
		},
	}
	cmd.Flags().Int64Var(&n, "n", message.FetchAll, "records to pull; -1 pulls all")
	cmd.Flags().Int64Var(&qid, "qid", message.NoQID, "statement id; -1 is the latest statement")
	return cmd
}

func encodeRequestCmd(run encodeFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request <file|->",
		Short:   "Encode any message described by a JSON request body",
		Example: `  echo '{"message":"TELEMETRY","api":2}' | boltwire encode request -`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req inspect.EncodeRequest
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			if err := dec.Decode(&req); err != nil {
				return fmt.Errorf("parse request: %w", err)
			}
			return run(cmd, req)
		},
	}
	return cmd
}

func parsePairs(in []string) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(in))
	for _, item := range in {
		k, v, ok := strings.Cut(item, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", item)
		}
		out[k] = v
	}
	return out, nil
}

func parseParams(in []string) (map[string]any, error) {
	pairs, err := parsePairs(in)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for k, raw := range pairs {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil || dec.More() {
			out[k] = raw
			continue
		}
		out[k] = v
	}
	return out, nil
}
