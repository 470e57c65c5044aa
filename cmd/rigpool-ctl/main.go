package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/rigpool/rigpool/pb"
	derror "github.com/rigpool/rigpool/pkg/errors"
)

var (
	serverAddr string
	rpcTimeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "rigpool-ctl",
		Short:         "inspect and administer a rigpool server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addServerFlags(root.PersistentFlags())
	root.AddCommand(
		newResourcesCommand(),
		newSessionsCommand(),
		newRehabilitateCommand(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func addServerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&serverAddr, "server", "127.0.0.1:10240", "address of the rigpool server")
	fs.DurationVar(&rpcTimeout, "timeout", 5*time.Second, "timeout of a single command")
}

// withClient dials the server for the duration of one command. The ctl
// is sessionless, it only uses RPCs that need no Connect handshake.
func withClient(fn func(ctx context.Context, cli pb.ResourceManagerClient) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	conn, err := grpc.DialContext(ctx, serverAddr, grpc.WithInsecure(), grpc.WithBlock())
	if err != nil {
		return derror.Wrap(derror.ErrGrpcBuildConn, err)
	}
	defer conn.Close()
	return fn(ctx, pb.NewResourceManagerClient(conn))
}

func newResourcesCommand() *cobra.Command {
	var (
		names []string
		tag   string
		dirty bool
	)
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "list resources and their occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, cli pb.ResourceManagerClient) error {
				resp, err := cli.QueryResources(ctx, &pb.QueryResourcesRequest{
					Names:     names,
					Tag:       tag,
					DirtyOnly: dirty,
				})
				if err != nil {
					return err
				}
				if inErr := derror.FromPBError(resp.Err); inErr != nil {
					return inErr
				}
				printResources(resp.Resources)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&names, "names", nil, "resource names to show, default all")
	cmd.Flags().StringVar(&tag, "tag", "", "only resources carrying this tag")
	cmd.Flags().BoolVar(&dirty, "dirty", false, "only dirty resources")
	return cmd
}

func newSessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "list connected sessions, their leases and queued requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, cli pb.ResourceManagerClient) error {
				resp, err := cli.QuerySessions(ctx, &pb.QuerySessionsRequest{})
				if err != nil {
					return err
				}
				if inErr := derror.FromPBError(resp.Err); inErr != nil {
					return inErr
				}
				printSessions(resp.Sessions)
				return nil
			})
		},
	}
}

func newRehabilitateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rehabilitate <resource>",
		Short: "mark a dirty resource usable again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, cli pb.ResourceManagerClient) error {
				resp, err := cli.Rehabilitate(ctx, &pb.RehabilitateRequest{Name: args[0]})
				if err != nil {
					return err
				}
				if inErr := derror.FromPBError(resp.Err); inErr != nil {
					return inErr
				}
				fmt.Printf("resource %s is clean again\n", args[0])
				return nil
			})
		},
	}
}

func printResources(resources []*pb.ResourceInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tCAP\tTAGS\tSTATE\tHOLDERS")
	for _, r := range resources {
		state := "free"
		if r.Dirty {
			state = "dirty"
		} else if len(r.Holders) > 0 {
			state = "held"
		}
		capacity := "1"
		if r.Mode == pb.Mode_Shared {
			if r.MaxHolders == 0 {
				capacity = "inf"
			} else {
				capacity = fmt.Sprint(r.MaxHolders)
			}
		}
		holders := make([]string, 0, len(r.Holders))
		for _, h := range r.Holders {
			holders = append(holders, fmt.Sprintf("%s(%s)", h.SessionId, h.LeaseId))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, strings.ToLower(r.Mode.String()), capacity,
			strings.Join(r.Tags, ","), state, strings.Join(holders, " "))
	}
	w.Flush()
}

func printSessions(sessions []*pb.SessionInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tCLIENT\tEPOCH\tCONNECTED\tLEASES\tQUEUED")
	for _, s := range sessions {
		queued := 0
		for _, r := range s.Requests {
			if r.State == pb.RequestState_Queued || r.State == pb.RequestState_Pending {
				queued++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\n",
			s.SessionId, s.ClientName, s.Epoch,
			time.UnixMilli(s.ConnectedAt).Format(time.RFC3339),
			len(s.LeaseIds), queued)
	}
	w.Flush()
}
