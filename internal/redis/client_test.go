package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ParsesURL(t *testing.T) {
	c, err := NewClient("redis://:pw@localhost:6390/2")
	require.NoError(t, err)
	defer c.Close()

	opts := c.Options()
	assert.Equal(t, "localhost:6390", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, ClientName, opts.ClientName)
}

func TestNewClient_KeepsClientNameFromURL(t *testing.T) {
	c, err := NewClient("redis://localhost:6390/0?client_name=worker-a")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "worker-a", c.Options().ClientName)
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("http://nope")
	assert.Error(t, err)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "redis://127.0.0.1:1/0", 500*time.Millisecond)
	assert.ErrorContains(t, err, "redis ping")
}
