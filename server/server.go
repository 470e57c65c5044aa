package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gogo/status"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/pingcap/log"
	"go.etcd.io/etcd/embed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/clock"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/etcdutil"
	"github.com/rigpool/rigpool/pkg/meta/etcdkv"
	"github.com/rigpool/rigpool/pkg/meta/metaclient"
	"github.com/rigpool/rigpool/pkg/promutil"
	"github.com/rigpool/rigpool/registry"
)

const etcdStartTimeout = time.Minute

// Server ties the registry, the allocation engine and the transport
// together. One process serves the gRPC API, the status HTTP endpoint
// and, unless an external metastore is configured, an embedded etcd
// holding the durable registry state.
type Server struct {
	cfg *Config

	etcd     *embed.Etcd
	metaCli  *etcdkv.Client
	reg      *registry.Registry
	hub      *watchHub
	sessions *sessionManager
	alloc    *allocator
	service  *service

	grpcSrv   *grpc.Server
	statusSrv *http.Server

	clock clock.Clock
}

// NewServer creates a Server from an adjusted config.
func NewServer(cfg *Config) *Server {
	return &Server{
		cfg:   cfg,
		clock: clock.New(),
	}
}

// Run starts the server and blocks until the context is cancelled or a
// component fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.startMetastore(ctx); err != nil {
		return err
	}
	defer s.closeMetastore()

	if err := s.bootstrap(ctx); err != nil {
		return err
	}
	defer promutil.UnregisterComponent(metricComponent)

	grpcLis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidServerAddr, err, s.cfg.Addr)
	}
	s.grpcSrv = grpc.NewServer(
		grpc_middleware.WithUnaryServerChain(
			rpcLogInterceptor,
			grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandler(recoverFromPanic)),
		),
		grpc_middleware.WithStreamServerChain(
			grpc_recovery.StreamServerInterceptor(grpc_recovery.WithRecoveryHandler(recoverFromPanic)),
		),
	)
	pb.RegisterResourceManagerServer(s.grpcSrv, s.service)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promutil.HTTPHandlerForMetric())
	mux.HandleFunc("/status", s.handleStatus)
	s.statusSrv = &http.Server{Addr: s.cfg.StatusAddr, Handler: mux}

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return s.sessions.runBackgroundChecker(ctx)
	})
	wg.Go(func() error {
		return s.alloc.runBackgroundChecker(ctx)
	})
	wg.Go(func() error {
		return s.grpcSrv.Serve(grpcLis)
	})
	wg.Go(func() error {
		err := s.statusSrv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	wg.Go(func() error {
		<-ctx.Done()
		// watch streams keep GracefulStop waiting forever, so stop hard
		s.grpcSrv.Stop()
		_ = s.statusSrv.Close()
		return nil
	})

	log.L().Info("resource server started",
		zap.String("addr", s.cfg.Addr),
		zap.String("status-addr", s.cfg.StatusAddr),
		zap.Int("resources", s.reg.Len()))
	err = wg.Wait()
	if err == grpc.ErrServerStopped {
		err = nil
	}
	return err
}

// startMetastore brings up the embedded etcd unless the config points
// at an external one, then connects the metastore client.
func (s *Server) startMetastore(ctx context.Context) error {
	if s.cfg.MetaEndpoints == "" {
		etcdCfg, err := etcdutil.GenEmbedEtcdConfig(
			etcdutil.GenEmbedEtcdConfigWithLogger(s.cfg.LogLevel),
			s.cfg.MetaAddr, s.cfg.MetaAddr, s.cfg.Etcd)
		if err != nil {
			return err
		}
		s.etcd, err = etcdutil.StartEtcd(etcdCfg, nil, nil, etcdStartTimeout)
		if err != nil {
			return err
		}
		log.L().Info("embedded metastore started",
			zap.String("meta-addr", s.cfg.MetaAddr),
			zap.String("data-dir", s.cfg.Etcd.DataDir))
	}

	storeConf := metaclient.StoreConfig{Endpoints: s.cfg.metastoreEndpoints()}
	metaCli, err := etcdkv.NewClient(storeConf)
	if err != nil {
		return err
	}
	s.metaCli = metaCli
	return nil
}

func (s *Server) closeMetastore() {
	if s.metaCli != nil {
		_ = s.metaCli.Close()
	}
	if s.etcd != nil {
		s.etcd.Close()
	}
}

// bootstrap loads the seed, reconciles it against the persisted state
// and wires the allocation engine.
func (s *Server) bootstrap(ctx context.Context) error {
	var (
		seed []model.ResourceMeta
		err  error
	)
	if s.cfg.SeedFile != "" {
		seed, err = registry.LoadSeed(s.cfg.SeedFile)
		if err != nil {
			return err
		}
	} else {
		log.L().Warn("no seed file configured, starting with an empty pool")
	}

	s.reg = registry.NewRegistry(s.metaCli)
	recovered, err := s.reg.Bootstrap(ctx, seed)
	if err != nil {
		return err
	}

	s.hub = newWatchHub()
	table := newLeaseTable(s.reg.List(), recovered)
	metrics := newAllocatorMetrics(promutil.With(metricComponent))
	s.alloc = newAllocator(
		table, s.hub, s.reg, s.clock, metrics,
		s.cfg.DisableBackfill, s.cfg.Timeouts.RequestCheckLoopInterval)
	s.sessions = newSessionManager(s.metaCli, s.clock, s.cfg.Timeouts,
		func(ctx context.Context, info *model.SessionInfo) {
			s.alloc.ForceReleaseAll(ctx, info.ID, pb.ReclaimReason_SessionTimeout)
			s.hub.CloseSession(info.ID)
		})
	s.service = newService(s.cfg.Timeouts, s.sessions, s.alloc, s.hub, s.clock)
	return nil
}

type statusInfo struct {
	Name      string `json:"name"`
	Addr      string `json:"addr"`
	Resources int    `json:"resources"`
	Sessions  int    `json:"sessions"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	info := statusInfo{
		Name:      s.cfg.Etcd.Name,
		Addr:      s.cfg.AdvertiseAddr,
		Resources: s.reg.Len(),
		Sessions:  len(s.sessions.Snapshot()),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		log.L().Error("write status response", zap.Error(err))
	}
}

func rpcLogInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		log.L().Warn("rpc failed",
			zap.String("method", info.FullMethod),
			zap.Error(err))
	} else {
		log.L().Debug("rpc handled",
			zap.String("method", info.FullMethod),
			zap.Reflect("request", req))
	}
	return resp, err
}

func recoverFromPanic(p interface{}) error {
	log.L().Error("panic in rpc handler",
		zap.Reflect("panic", p),
		zap.Stack("stack"))
	return status.Errorf(codes.Internal, "%v", p)
}
