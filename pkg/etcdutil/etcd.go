package etcdutil

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.etcd.io/etcd/embed"
	"google.golang.org/grpc"

	"github.com/rigpool/rigpool/pkg/errors"
)

// ConfigParams holds the etcd cluster items exposed in the server
// configuration file.
type ConfigParams struct {
	Name                string `toml:"name" json:"name"`
	DataDir             string `toml:"data-dir" json:"data-dir"`
	PeerUrls            string `toml:"peer-urls" json:"peer-urls"`
	AdvertisePeerUrls   string `toml:"advertise-peer-urls" json:"advertise-peer-urls"`
	InitialCluster      string `toml:"initial-cluster" json:"initial-cluster"`
	InitialClusterState string `toml:"initial-cluster-state" json:"initial-cluster-state"`
}

// Adjust fills missing items derived from the listen address.
func (p *ConfigParams) Adjust(defaultPeerUrls string) {
	if p.PeerUrls == "" {
		p.PeerUrls = defaultPeerUrls
	}
	if p.AdvertisePeerUrls == "" {
		p.AdvertisePeerUrls = p.PeerUrls
	}
	if p.InitialCluster == "" {
		items := strings.Split(p.AdvertisePeerUrls, ",")
		for i, item := range items {
			items[i] = p.Name + "=" + item
		}
		p.InitialCluster = strings.Join(items, ",")
	}
	if p.InitialClusterState == "" {
		p.InitialClusterState = embed.ClusterStateFlagNew
	}
}

// GenEmbedEtcdConfigWithLogger creates an embed etcd config with the
// zap logger wired to the given level.
func GenEmbedEtcdConfigWithLogger(logLevel string) *embed.Config {
	cfg := embed.NewConfig()
	// disable grpc gateway because https://github.com/etcd-io/etcd/issues/12066
	cfg.EnableGRPCGateway = false
	cfg.Logger = "zap"
	cfg.LogLevel = logLevel
	cfg.LogOutputs = []string{"stdout"}
	return cfg
}

// GenEmbedEtcdConfig transforms the server's listen addresses and
// cluster params into a verified embed etcd config.
func GenEmbedEtcdConfig(cfg *embed.Config, addr string, advertiseAddr string, params *ConfigParams) (*embed.Config, error) {
	cfg.Name = params.Name
	cfg.Dir = params.DataDir

	var err error
	cfg.LCUrls, err = parseURLs(addr)
	if err != nil {
		return nil, err
	}
	cfg.ACUrls, err = parseURLs(advertiseAddr)
	if err != nil {
		return nil, err
	}
	cfg.LPUrls, err = parseURLs(params.PeerUrls)
	if err != nil {
		return nil, err
	}
	cfg.APUrls, err = parseURLs(params.AdvertisePeerUrls)
	if err != nil {
		return nil, err
	}

	cfg.InitialCluster = params.InitialCluster
	cfg.ClusterState = params.InitialClusterState
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrStartEtcdFail, err)
	}
	return cfg, nil
}

// StartEtcd starts an embedded etcd, registering the given gRPC server
// and HTTP handlers on the client listener. It waits until the server
// is ready to serve, or fails after startTimeout.
func StartEtcd(etcdCfg *embed.Config,
	gRPCSvr func(*grpc.Server),
	httpHandlers map[string]http.Handler,
	startTimeout time.Duration,
) (*embed.Etcd, error) {
	if gRPCSvr != nil {
		etcdCfg.ServiceRegister = gRPCSvr
	}
	if httpHandlers != nil {
		etcdCfg.UserHandlers = httpHandlers
	}

	e, err := embed.StartEtcd(etcdCfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStartEtcdFail, err)
	}

	select {
	case <-e.Server.ReadyNotify():
	case <-time.After(startTimeout):
		// Closing the embed etcd can block when the server never
		// became ready, so only stop the raft server here and let
		// the process exit.
		e.Server.Stop()
		return nil, errors.ErrStartEtcdTimeout.GenWithStackByArgs(startTimeout)
	}
	return e, nil
}

// parseURLs parses a comma separated address list, tolerating addresses
// without a scheme.
func parseURLs(s string) ([]url.URL, error) {
	if s == "" {
		return nil, nil
	}

	items := strings.Split(s, ",")
	urls := make([]url.URL, 0, len(items))
	for _, item := range items {
		u, err := url.Parse(item)
		if err != nil || u.Scheme == "" || u.Host == "" {
			u, err = url.Parse("http://" + item)
			if err != nil {
				return nil, errors.Wrap(errors.ErrParseURLFail, err, item)
			}
			if u.Scheme == "" || u.Host == "" {
				return nil, errors.ErrParseURLFail.GenWithStackByArgs(item)
			}
		}
		urls = append(urls, *u)
	}
	return urls, nil
}
