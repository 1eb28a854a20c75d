package redis

import (
	"net"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/config"
)

// newTestClient 启动内嵌 miniredis 并建立客户端
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewClient(&config.RedisConfig{
		Host: host,
		Port: port,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
