package etcdutil

import (
	"fmt"
	"testing"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/embed"
)

func TestConfigParamsAdjust(t *testing.T) {
	t.Parallel()

	params := &ConfigParams{Name: "rigpool-1"}
	params.Adjust("http://127.0.0.1:10240")

	require.Equal(t, "http://127.0.0.1:10240", params.PeerUrls)
	require.Equal(t, "http://127.0.0.1:10240", params.AdvertisePeerUrls)
	require.Equal(t, "rigpool-1=http://127.0.0.1:10240", params.InitialCluster)
	require.Equal(t, embed.ClusterStateFlagNew, params.InitialClusterState)
}

func TestGenEmbedEtcdConfig(t *testing.T) {
	t.Parallel()

	ports, err := freeport.GetFreePorts(2)
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", ports[0])
	peerURL := fmt.Sprintf("http://127.0.0.1:%d", ports[1])

	params := &ConfigParams{
		Name:    "rigpool-test",
		DataDir: t.TempDir(),
	}
	params.PeerUrls = peerURL
	params.Adjust(peerURL)

	cfg := GenEmbedEtcdConfigWithLogger("info")
	cfg, err = GenEmbedEtcdConfig(cfg, addr, addr, params)
	require.NoError(t, err)
	require.Equal(t, "rigpool-test", cfg.Name)
	require.Len(t, cfg.LCUrls, 1)
	require.Equal(t, "http://"+addr, cfg.LCUrls[0].String())
	require.Len(t, cfg.LPUrls, 1)
	require.Equal(t, peerURL, cfg.LPUrls[0].String())
}

func TestParseURLsSchemeless(t *testing.T) {
	t.Parallel()

	urls, err := parseURLs("127.0.0.1:10240,http://127.0.0.1:10241")
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Equal(t, "http", urls[0].Scheme)
	require.Equal(t, "127.0.0.1:10240", urls[0].Host)
	require.Equal(t, "127.0.0.1:10241", urls[1].Host)

	urls, err = parseURLs("")
	require.NoError(t, err)
	require.Nil(t, urls)
}
