package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"nightlies/internal/config"
	"nightlies/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// freeAddr reserves a loopback port and releases it for the caller to bind.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func startServe(t *testing.T, cfg config.Config) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, zap.NewNop()) }()
	return cancel, done
}

func waitServe(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after cancel")
		return nil
	}
}

func TestServe_ServesAndShutsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Server.Addr = freeAddr(t)
	cfg.Server.MetricsAddr = freeAddr(t)

	cancel, done := startServe(t, cfg)
	defer cancel()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.Addr + "/current-nightly")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.MetricsAddr + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, waitServe(t, done))
}

func TestServe_ListenFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Server.Addr = ln.Addr().String()

	cancel, done := startServe(t, cfg)
	defer cancel()

	err = waitServe(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

// The GC worker is stopped before the Badger store underneath it is closed.
func TestServe_BadgerWithGCWorker(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendBadger
	cfg.Store.BadgerPath = t.TempDir()
	cfg.Server.Addr = freeAddr(t)
	cfg.Server.GCInterval = time.Millisecond

	cancel, done := startServe(t, cfg)
	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.NoError(t, waitServe(t, done))
}

func TestGCCollector(t *testing.T) {
	onDisk, err := store.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer onDisk.Close()

	inMemory, err := store.NewBadgerStore("")
	require.NoError(t, err)
	defer inMemory.Close()

	bolt, err := store.NewBoltStore(filepath.Join(t.TempDir(), "n.db"))
	require.NoError(t, err)
	defer bolt.Close()

	withPath := config.Default()
	noPath := config.Default()
	noPath.Store.BadgerPath = ""
	disabled := config.Default()
	disabled.Server.GCInterval = 0

	_, ok := gcCollector(onDisk, withPath)
	assert.True(t, ok, "on-disk badger gets the worker")

	_, ok = gcCollector(inMemory, noPath)
	assert.False(t, ok, "in-memory badger has no value log")

	_, ok = gcCollector(onDisk, disabled)
	assert.False(t, ok, "zero interval disables the worker")

	_, ok = gcCollector(bolt, withPath)
	assert.False(t, ok, "bolt has nothing to collect")

	_, ok = gcCollector(store.NewMemoryStore(), withPath)
	assert.False(t, ok)
}
