package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/testutil"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestNew_AllSectionsDisabled(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), nil, analysis.SourceCLI)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Service)
	assert.Nil(t, a.Collector)
	assert.Nil(t, a.Runs)
	assert.Nil(t, a.Store)
	assert.Nil(t, a.Events)
	assert.Empty(t, a.HealthChecks())
	assert.Nil(t, a.Locker())

	res, err := a.Service.Analyze(context.Background(), &analysis.AnalyzeInput{
		FileName: "mini.csv",
		Content:  []byte("smiles\nCCO\n"),
		Source:   analysis.SourceCLI,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Pass)
}

func TestNew_MetricsEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Metrics.Enabled = true

	a, err := New(context.Background(), cfg, testutil.NewMockLogger(), analysis.SourceHTTP)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Collector)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.Collector.Handler())
}

func TestNew_RedisCachesDescriptors(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, nil, analysis.SourceCLI)
	require.NoError(t, err)
	defer a.Close()

	require.Len(t, a.HealthChecks(), 1)
	check := a.HealthChecks()[0]
	assert.Equal(t, "redis", check.Name)
	assert.NoError(t, check.Check(context.Background()))

	_, err = a.Service.Analyze(context.Background(), &analysis.AnalyzeInput{
		FileName: "mini.csv",
		Content:  []byte("smiles\nCCO\n"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys(), "descriptors should be cached")
}

func TestApp_Locker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, nil, analysis.SourceWorker)
	require.NoError(t, err)
	defer a.Close()

	locker := a.Locker()
	require.NotNil(t, locker)
	ctx := context.Background()

	lock, ok, err := locker.TryLock(ctx, "uploads/a.csv", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, lock)

	second, ok, err := locker.TryLock(ctx, "uploads/a.csv", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, second)

	require.NoError(t, lock.Unlock(ctx))
}

func TestNew_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := baseConfig()
	cfg.Metrics.Enabled = true
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	cfg.Redis.DialTimeout = 100 * time.Millisecond

	a, err := New(context.Background(), cfg, nil, analysis.SourceCLI)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "redis")
}

func TestApp_CloseReverseOrder(t *testing.T) {
	var order []string
	a := &App{}
	a.closers = append(a.closers,
		func() error { order = append(order, "first"); return nil },
		func() error { order = append(order, "second"); return assert.AnError },
	)

	assert.ErrorIs(t, a.Close(), assert.AnError)
	assert.Equal(t, []string{"second", "first"}, order)
	assert.NoError(t, a.Close())
}

//Personal.AI order the ending
