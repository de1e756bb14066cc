package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Success(t *testing.T) {
	var count atomic.Int32
	tasks := []Task{
		{Name: "a", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "b", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "c", Func: func(context.Context) error { count.Add(1); return nil }},
	}

	require.NoError(t, RunParallel(context.Background(), tasks))
	assert.Equal(t, int32(3), count.Load())
}

func TestRunParallel_EmptyTasks(t *testing.T) {
	assert.NoError(t, RunParallel(context.Background(), nil))
	assert.NoError(t, RunParallel(context.Background(), []Task{}))
}

func TestRunParallel_ReturnsNamedError(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		{Name: "ok", Func: func(context.Context) error { return nil }},
		{Name: "bad", Func: func(context.Context) error { return boom }},
	}

	err := RunParallel(context.Background(), tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}

func TestRunPerNode_CollectsEveryResult(t *testing.T) {
	boom := errors.New("unreachable")
	results := RunPerNode(context.Background(), []string{"n1", "n2", "n3"}, func(_ context.Context, node string) error {
		if node == "n2" {
			return boom
		}
		return nil
	})

	require.Len(t, results, 3)
	assert.NoError(t, results["n1"])
	assert.ErrorIs(t, results["n2"], boom)
	assert.NoError(t, results["n3"])
}

func TestRunPerNode_EmptyNodes(t *testing.T) {
	results := RunPerNode(context.Background(), nil, func(context.Context, string) error {
		t.Fatal("must not be called")
		return nil
	})
	assert.Empty(t, results)
}
