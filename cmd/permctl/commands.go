package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/asakaida/rolegate/internal/handlers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

const (
	defaultAddr    = "localhost:50051"
	defaultTimeout = 10 * time.Second
)

// dialFunc opens a connection to addr and returns it with its close function
type dialFunc func(addr string) (grpc.ClientConnInterface, func() error, error)

type cli struct {
	dial dialFunc
	v    *viper.Viper
}

func newRootCmd(dial dialFunc) *cobra.Command {
	c := &cli{dial: dial, v: viper.New()}

	root := &cobra.Command{
		Use:   "permctl",
		Short: "Manage and check rolegate permissions",
		Long: `permctl talks to a running rolegate server over gRPC.
The server address is taken from --addr or ROLEGATE_ADDR.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("addr", defaultAddr, "rolegate gRPC address")
	root.PersistentFlags().Duration("timeout", defaultTimeout, "request timeout")
	_ = c.v.BindPFlag("addr", root.PersistentFlags().Lookup("addr"))
	_ = c.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	c.v.SetEnvPrefix("ROLEGATE")
	c.v.AutomaticEnv()

	root.AddCommand(
		c.ruleCmd("allow <role> <action> <resource>", "Allow role to perform action on resource", 3,
			func(ctx context.Context, pc *handlers.PermissionClient, args []string) error {
				return pc.Allow(ctx, args[0], args[1], args[2])
			}),
		c.ruleCmd("deny <role> <action> <resource>", "Deny role to perform action on resource", 3,
			func(ctx context.Context, pc *handlers.PermissionClient, args []string) error {
				return pc.Deny(ctx, args[0], args[1], args[2])
			}),
		c.ruleCmd("allow-all <role> <resource>", "Allow role every action on resource", 2,
			func(ctx context.Context, pc *handlers.PermissionClient, args []string) error {
				return pc.AllowAll(ctx, args[0], args[1])
			}),
		c.ruleCmd("deny-all <role> <resource>", "Deny role every action on resource", 2,
			func(ctx context.Context, pc *handlers.PermissionClient, args []string) error {
				return pc.DenyAll(ctx, args[0], args[1])
			}),
		c.checkCmd(),
		c.listCmd(),
	)

	return root
}

// withClient connects, runs fn with a timeout-bound context and closes the connection
func (c *cli) withClient(cmd *cobra.Command, fn func(ctx context.Context, pc *handlers.PermissionClient) error) error {
	conn, closeConn, err := c.dial(c.v.GetString("addr"))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = closeConn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), c.v.GetDuration("timeout"))
	defer cancel()

	return fn(ctx, handlers.NewPermissionClient(conn))
}

func (c *cli) ruleCmd(
	use, short string,
	nargs int,
	call func(ctx context.Context, pc *handlers.PermissionClient, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(ctx context.Context, pc *handlers.PermissionClient) error {
				if err := call(ctx, pc, args); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <role> <action> <resource>",
		Short: "Check whether role may perform action on resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(ctx context.Context, pc *handlers.PermissionClient) error {
				result, err := pc.Check(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				verdict := "denied"
				if result.Allowed {
					verdict = "allowed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", verdict, result.Reason)
				return nil
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "List the rules defined on resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(ctx context.Context, pc *handlers.PermissionClient) error {
				rules, err := pc.ListRules(ctx, args[0])
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ROLE\tSCOPE\tACTION\tKIND\tID")
				for _, r := range rules {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Role, r.Scope, r.Action, r.Kind, r.ID)
				}
				return w.Flush()
			})
		},
	}
}
