package rpcutil

import (
	"context"
	"strings"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rigpool/rigpool/pkg/errors"
)

type closeableConnIface interface {
	Close() error
}

// failoverRpcClientType should be limited to rpc client types, but golang
// can't let us do it. So we left an alias to any.
type failoverRpcClientType any

// ClientHolder groups a RPC client and its closing function.
type ClientHolder[T failoverRpcClientType] struct {
	conn   closeableConnIface
	client T
}

// NewClientHolder is used by dialers to pair a freshly dialed
// connection with the typed client built on top of it.
func NewClientHolder[T failoverRpcClientType](conn closeableConnIface, client T) *ClientHolder[T] {
	return &ClientHolder[T]{conn: conn, client: client}
}

// DialFunc dials one server address and builds its typed client.
type DialFunc[T failoverRpcClientType] func(ctx context.Context, addr string) (*ClientHolder[T], error)

// FailoverRpcClients maintains one RPC client per known server address,
// so an RPC can fall back to another server when one fails.
type FailoverRpcClients[T failoverRpcClientType] struct {
	urls        []string
	leader      string
	clientsLock sync.RWMutex
	clients     map[string]*ClientHolder[T]
	dialer      DialFunc[T]
}

func NewFailoverRpcClients[T failoverRpcClientType](
	ctx context.Context,
	urls []string,
	dialer DialFunc[T],
) (*FailoverRpcClients[T], error) {
	ret := &FailoverRpcClients[T]{
		clients: make(map[string]*ClientHolder[T]),
		dialer:  dialer,
	}
	err := ret.init(ctx, urls)
	if err != nil {
		return nil, err
	}
	// the leader is refreshed by later UpdateClients calls
	ret.leader = ret.urls[0]
	return ret, nil
}

func (c *FailoverRpcClients[T]) init(ctx context.Context, urls []string) error {
	c.UpdateClients(ctx, urls, "")
	if len(c.clients) == 0 {
		return errors.ErrGrpcBuildConn.GenWithStack("failed to dial to server, urls: %v", urls)
	}
	return nil
}

// UpdateClients receives a list of server addresses, dials to servers
// not yet maintained and drops clients whose address disappeared.
func (c *FailoverRpcClients[T]) UpdateClients(ctx context.Context, urls []string, leaderURL string) {
	c.clientsLock.Lock()
	defer c.clientsLock.Unlock()

	c.leader = leaderURL

	notFound := make(map[string]struct{}, len(c.clients))
	for addr := range c.clients {
		notFound[addr] = struct{}{}
	}

	for _, addr := range urls {
		addr = strings.Replace(addr, "http://", "", 1)
		delete(notFound, addr)
		if _, ok := c.clients[addr]; !ok {
			log.L().Info("add new resource server client", zap.String("addr", addr))
			cliH, err := c.dialer(ctx, addr)
			if err != nil {
				log.L().Warn("dial to resource server failed", zap.String("addr", addr), zap.Error(err))
				continue
			}
			c.urls = append(c.urls, addr)
			c.clients[addr] = cliH
		}
	}

	for k := range notFound {
		if c.clients[k].conn != nil {
			if err := c.clients[k].conn.Close(); err != nil {
				log.L().Warn("close resource server client failed", zap.String("addr", k), zap.Error(err))
			}
		}
		delete(c.clients, k)
	}
}

// Leader returns the address last announced as leader, which may be
// empty.
func (c *FailoverRpcClients[T]) Leader() string {
	c.clientsLock.RLock()
	defer c.clientsLock.RUnlock()
	return c.leader
}

// Close closes every underlying connection.
func (c *FailoverRpcClients[T]) Close() {
	c.clientsLock.Lock()
	defer c.clientsLock.Unlock()

	for addr, cliH := range c.clients {
		if cliH.conn != nil {
			if err := cliH.conn.Close(); err != nil {
				log.L().Warn("close resource server client failed", zap.String("addr", addr), zap.Error(err))
			}
		}
		delete(c.clients, addr)
	}
}

// DoFailoverRPC calls RPC on the given clients one by one until one
// succeeds. It should be a method of FailoverRpcClients, but golang
// can't let us do it, so we use a public function.
func DoFailoverRPC[
	C failoverRpcClientType,
	Req any,
	Resp any,
	F func(C, context.Context, Req, ...grpc.CallOption) (Resp, error),
](
	ctx context.Context,
	clients *FailoverRpcClients[C],
	req Req,
	rpc F,
) (Resp, error) {
	clients.clientsLock.RLock()
	defer clients.clientsLock.RUnlock()

	var resp Resp
	err := error(errors.ErrNoRPCClient.GenWithStackByArgs())

	for _, cli := range clients.clients {
		resp, err = rpc(cli.client, ctx, req)
		if err == nil {
			return resp, nil
		}
	}
	return resp, err
}
