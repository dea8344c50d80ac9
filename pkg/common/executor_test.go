package common

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewPipeline(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()

	// empty
	emptyPipeline := NewPipelineExecutor()
	assert.Nil(emptyPipeline(ctx))

	// error case
	errorPipeline := NewErrorExecutor(fmt.Errorf("test error"))
	assert.NotNil(errorPipeline(ctx))

	// multiple success case
	runcount := 0
	successPipeline := NewPipelineExecutor(
		func(_ context.Context) error {
			runcount++
			return nil
		},
		func(_ context.Context) error {
			runcount++
			return nil
		})
	assert.Nil(successPipeline(ctx))
	assert.Equal(2, runcount)
}

func TestPipelineWarningContinues(t *testing.T) {
	assert := assert.New(t)

	ran := false
	err := NewPipelineExecutor(
		NewErrorExecutor(Warningf("ballot %d ranks nobody", 3)),
		func(_ context.Context) error {
			ran = true
			return nil
		})(context.Background())

	assert.Nil(err)
	assert.True(ran)
}

func TestPipelineStopsOnError(t *testing.T) {
	assert := assert.New(t)

	ran := false
	err := NewErrorExecutor(fmt.Errorf("bad profile")).Then(func(_ context.Context) error {
		ran = true
		return nil
	})(context.Background())

	assert.EqualError(err, "bad profile")
	assert.False(ran)
}

func TestIfBoolAndFinally(t *testing.T) {
	assert := assert.New(t)

	calls := []string{}
	record := func(name string) Executor {
		return func(_ context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	err := record("skipped").IfBool(false).Then(record("tally")).Finally(record("cleanup"))(context.Background())
	assert.Nil(err)
	assert.Equal([]string{"tally", "cleanup"}, calls)

	err = NewErrorExecutor(fmt.Errorf("boom")).Finally(NewErrorExecutor(fmt.Errorf("close")))(context.Background())
	assert.EqualError(err, "Error occurred running finally: close (original error: boom)")
}

func TestNewParallelExecutor(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()

	var count, activeCount, maxCount int32
	var mu sync.Mutex
	pipeline := NewPipelineExecutor(func(_ context.Context) error {
		atomic.AddInt32(&count, 1)

		active := atomic.AddInt32(&activeCount, 1)
		mu.Lock()
		if active > maxCount {
			maxCount = active
		}
		mu.Unlock()
		time.Sleep(200 * time.Millisecond)
		atomic.AddInt32(&activeCount, -1)

		return nil
	})

	err := NewParallelExecutor(2, pipeline, pipeline, pipeline)(ctx)

	assert.Equal(int32(3), count, "should run all 3 executors")
	assert.Equal(int32(2), maxCount, "should run at most 2 executors in parallel")
	assert.Nil(err)

	// Reset to test running the executor with 0 parallelism
	count = 0
	activeCount = 0
	maxCount = 0

	errSingle := NewParallelExecutor(0, pipeline, pipeline, pipeline)(ctx)

	assert.Equal(int32(3), count, "should run all 3 executors")
	assert.Equal(int32(1), maxCount, "should run at most 1 executors in parallel")
	assert.Nil(errSingle)
}

func TestNewParallelExecutorWaitsForAll(t *testing.T) {
	assert := assert.New(t)

	errExpected := fmt.Errorf("fake error")
	slots := make([]int, 3)
	fill := func(i int) Executor {
		return func(_ context.Context) error {
			time.Sleep(50 * time.Millisecond)
			slots[i] = i + 1
			return nil
		}
	}

	err := NewParallelExecutor(3, NewErrorExecutor(errExpected), fill(1), fill(2))(context.Background())
	assert.ErrorIs(err, errExpected)
	assert.Equal([]int{0, 2, 3}, slots)
}

func TestNewParallelExecutorCanceled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	errorPipeline := NewPipelineExecutor(func(_ context.Context) error {
		count++
		return fmt.Errorf("fake error")
	})
	err := NewParallelExecutor(1, errorPipeline)(ctx)
	assert.Equal(1, count)
	assert.ErrorIs(err, context.Canceled)
}

func TestNewFieldExecutor(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	ctx := WithLogger(context.Background(), logger)

	err := NewFieldExecutor("target", "Carol", NewInfoExecutor("searching"))(ctx)
	assert.Nil(err)
	assert.Contains(buf.String(), "target=Carol")
	assert.Contains(buf.String(), "msg=searching")
}
