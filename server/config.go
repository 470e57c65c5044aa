package server

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/etcdutil"
)

const (
	defaultAddr              = "127.0.0.1:10240"
	defaultPeerUrls          = "http://127.0.0.1:10241"
	defaultStatusAddr        = "127.0.0.1:10242"
	defaultMetaAddr          = "127.0.0.1:10243"
	defaultDataDir           = "/tmp/rigpool"
	defaultKeepAliveTTL      = "6s"
	defaultKeepAliveInterval = "3s"
)

// SampleConfigFile is printed by --print-sample-config so operators can
// bootstrap a config file without reading docs.
const SampleConfigFile = `# rigpool server configuration
addr = "127.0.0.1:10240"
status-addr = "127.0.0.1:10242"
meta-addr = "127.0.0.1:10243"
seed = "resources.toml"
log-level = "info"

[etcd]
name = "rigpool-1"
data-dir = "/tmp/rigpool"
`

// NewConfig creates a config for the resource server.
func NewConfig() *Config {
	cfg := &Config{
		Etcd: &etcdutil.ConfigParams{},
	}
	cfg.flagSet = flag.NewFlagSet("rigpool-server", flag.ContinueOnError)
	fs := cfg.flagSet

	fs.BoolVar(&cfg.printSampleConfig, "print-sample-config", false, "print sample config file of the resource server")
	fs.StringVar(&cfg.ConfigFile, "config", "", "path to config file")
	fs.StringVar(&cfg.Addr, "addr", defaultAddr, "address the gRPC API listens on")
	fs.StringVar(&cfg.AdvertiseAddr, "advertise-addr", "", `advertise address for client traffic (default "${addr}")`)
	fs.StringVar(&cfg.StatusAddr, "status-addr", defaultStatusAddr, "address the status and metrics HTTP server listens on")
	fs.StringVar(&cfg.MetaAddr, "meta-addr", defaultMetaAddr, "client address of the embedded registry metastore")
	fs.StringVar(&cfg.MetaEndpoints, "meta-endpoints", "", "comma separated endpoints of an external registry metastore, leave empty to embed one")
	fs.StringVar(&cfg.SeedFile, "seed", "", "path to the resource seed file")
	fs.StringVar(&cfg.LogLevel, "L", "info", "log level: debug, info, warn, error, fatal")
	fs.StringVar(&cfg.LogFile, "log-file", "", "log file path")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", `the format of the log, "text" or "json"`)

	fs.BoolVar(&cfg.DisableBackfill, "disable-backfill", false, "stop evaluating the queue at the first request that cannot be satisfied")
	fs.StringVar(&cfg.KeepAliveTTLStr, "keepalive-ttl", defaultKeepAliveTTL, "time a session survives without heartbeats")
	fs.StringVar(&cfg.KeepAliveIntervalStr, "keepalive-interval", defaultKeepAliveInterval, "heartbeat interval announced to clients")

	fs.StringVar(&cfg.Etcd.Name, "name", "rigpool-1", "human-readable name for this server")
	fs.StringVar(&cfg.Etcd.DataDir, "data-dir", defaultDataDir, "data dir for the registry metastore")
	fs.StringVar(&cfg.Etcd.InitialCluster, "initial-cluster", "", fmt.Sprintf("initial cluster configuration for bootstrapping, e.g. rigpool-1=%s", defaultPeerUrls))
	fs.StringVar(&cfg.Etcd.PeerUrls, "peer-urls", defaultPeerUrls, "URLs for peer traffic")
	fs.StringVar(&cfg.Etcd.AdvertisePeerUrls, "advertise-peer-urls", "", `advertise URLs for peer traffic (default "${peer-urls}")`)

	return cfg
}

// Config is the configuration for the resource server.
type Config struct {
	flagSet *flag.FlagSet

	LogLevel  string `toml:"log-level" json:"log-level"`
	LogFile   string `toml:"log-file" json:"log-file"`
	LogFormat string `toml:"log-format" json:"log-format"`

	Addr          string `toml:"addr" json:"addr"`
	AdvertiseAddr string `toml:"advertise-addr" json:"advertise-addr"`
	StatusAddr    string `toml:"status-addr" json:"status-addr"`

	// MetaAddr is where the embedded metastore serves clients.
	// MetaEndpoints switches the server to an external metastore
	// instead, for deployments that already run one.
	MetaAddr      string `toml:"meta-addr" json:"meta-addr"`
	MetaEndpoints string `toml:"meta-endpoints" json:"meta-endpoints"`

	ConfigFile string `toml:"config-file" json:"config-file"`
	SeedFile   string `toml:"seed" json:"seed"`

	DisableBackfill      bool   `toml:"disable-backfill" json:"disable-backfill"`
	KeepAliveTTLStr      string `toml:"keepalive-ttl" json:"keepalive-ttl"`
	KeepAliveIntervalStr string `toml:"keepalive-interval" json:"keepalive-interval"`

	// etcd relative config items
	Etcd *etcdutil.ConfigParams `toml:"etcd" json:"etcd"`

	Timeouts TimeoutConfig `toml:"-" json:"-"`

	printSampleConfig bool
}

func (c *Config) String() string {
	cfg, err := json.Marshal(c)
	if err != nil {
		log.L().Error("marshal to json", zap.Reflect("server config", c), zap.Error(err))
	}
	return string(cfg)
}

// Toml returns TOML format representation of config.
func (c *Config) Toml() (string, error) {
	var b bytes.Buffer

	err := toml.NewEncoder(&b).Encode(c)
	if err != nil {
		log.L().Error("fail to marshal config to toml", zap.Error(err))
	}

	return b.String(), nil
}

// Parse parses flag definitions from the argument list.
func (c *Config) Parse(arguments []string) error {
	// Parse first to get config file.
	err := c.flagSet.Parse(arguments)
	if err != nil {
		return errors.Wrap(errors.ErrServerConfigParseFlagSet, err)
	}

	if c.printSampleConfig {
		fmt.Println(SampleConfigFile)
		return flag.ErrHelp
	}

	// Load config file if specified.
	if c.ConfigFile != "" {
		err = c.configFromFile(c.ConfigFile)
		if err != nil {
			return err
		}
	}

	// Parse again to replace with command line options.
	err = c.flagSet.Parse(arguments)
	if err != nil {
		return errors.Wrap(errors.ErrServerConfigParseFlagSet, err)
	}

	if len(c.flagSet.Args()) != 0 {
		return errors.ErrServerConfigInvalidFlag.GenWithStackByArgs(c.flagSet.Arg(0))
	}
	return c.Adjust()
}

// Adjust fills in defaults derived from other fields and resolves the
// timeout strings.
func (c *Config) Adjust() (err error) {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.AdvertiseAddr == "" {
		c.AdvertiseAddr = c.Addr
	}
	if c.StatusAddr == "" {
		c.StatusAddr = defaultStatusAddr
	}
	if c.MetaAddr == "" {
		c.MetaAddr = defaultMetaAddr
	}
	if c.Etcd.DataDir == "" {
		c.Etcd.DataDir = defaultDataDir
	}
	c.Etcd.Adjust(defaultPeerUrls)

	timeouts := DefaultTimeoutConfig()
	if c.KeepAliveTTLStr != "" {
		timeouts.SessionTTL, err = time.ParseDuration(c.KeepAliveTTLStr)
		if err != nil {
			return errors.Wrap(errors.ErrServerConfigInvalidFlag, err, "keepalive-ttl")
		}
	}
	if c.KeepAliveIntervalStr != "" {
		timeouts.HeartbeatInterval, err = time.ParseDuration(c.KeepAliveIntervalStr)
		if err != nil {
			return errors.Wrap(errors.ErrServerConfigInvalidFlag, err, "keepalive-interval")
		}
	}
	c.Timeouts = timeouts.Adjust()
	return nil
}

// metastoreEndpoints returns the endpoints of the registry metastore,
// external ones when configured and the embedded one otherwise.
func (c *Config) metastoreEndpoints() []string {
	if c.MetaEndpoints == "" {
		return []string{c.MetaAddr}
	}
	var endpoints []string
	for _, ep := range strings.Split(c.MetaEndpoints, ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

// configFromFile loads config from file.
func (c *Config) configFromFile(path string) error {
	metaData, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrServerConfigDecodeFile, err)
	}
	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return errors.ErrServerConfigUnknownItem.GenWithStackByArgs(strings.Join(undecodedItems, ","))
	}
	return nil
}
