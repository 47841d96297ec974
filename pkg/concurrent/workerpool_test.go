// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AllSucceed(t *testing.T) {
	var counter atomic.Int32
	pool := NewWorkerPool(3)

	functions := make([]func() error, 10)
	for i := range functions {
		functions[i] = func() error {
			counter.Add(1)
			return nil
		}
	}

	require.NoError(t, pool.Run(context.Background(), functions...))
	assert.Equal(t, int32(10), counter.Load())
}

func TestRun_FirstErrorWins(t *testing.T) {
	pool := NewWorkerPool(1)
	boom := errors.New("boom")

	err := pool.Run(context.Background(),
		func() error { return nil },
		func() error { return boom },
		func() error { return nil },
	)

	assert.ErrorIs(t, err, boom)
}

func TestRun_NoFunctions(t *testing.T) {
	assert.NoError(t, NewWorkerPool(2).Run(context.Background()))
}

func TestRunAll_CollectsErrorsWithoutCancelling(t *testing.T) {
	var counter atomic.Int32
	pool := NewWorkerPool(2)

	errs := pool.RunAll(context.Background(),
		func() error { counter.Add(1); return errors.New("first") },
		func() error { counter.Add(1); return nil },
		func() error { counter.Add(1); return errors.New("second") },
	)

	assert.Equal(t, int32(3), counter.Load())
	assert.Len(t, errs, 2)
}

func TestRunAll_RespectsWorkerLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	gate := make(chan struct{})

	pool := NewWorkerPool(2)
	functions := make([]func() error, 6)
	for i := range functions {
		functions[i] = func() error {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			<-gate

			mu.Lock()
			current--
			mu.Unlock()
			return nil
		}
	}

	done := make(chan struct{})
	go func() {
		pool.RunAll(context.Background(), functions...)
		close(done)
	}()
	close(gate)
	<-done

	assert.LessOrEqual(t, peak, 2)
}

func TestNewWorkerPool_ClampsToOne(t *testing.T) {
	pool := NewWorkerPool(0)
	assert.Equal(t, 1, pool.workerCount)
}
