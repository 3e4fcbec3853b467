package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.CrashStoragePath = t.TempDir()
	c.LogLevel = "error"
	return c
}

func TestNewApp_InMemory(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, app.provider)
	assert.NotNil(t, app.ingestor)
	assert.NotNil(t, app.sweeper)
	assert.NotNil(t, app.grpc)
	assert.NotNil(t, app.http)
}

func TestNewApp_NoSweeperWhenCleanupDisabled(t *testing.T) {
	c := testConfig(t)
	c.CrashCleanupOldReports = false

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, app.sweeper)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.AuthMode = "ldap"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewApp_BridgedNeedsBaseURL(t *testing.T) {
	c := testConfig(t)
	c.AuthMode = config.ModeBridged

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_BadSigningKeyFile(t *testing.T) {
	c := testConfig(t)
	c.SigningKeyFile = t.TempDir() + "/missing.pem"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
