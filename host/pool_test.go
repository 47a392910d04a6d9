package host_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/reglet-dev/wapc-host/host"
	tu "github.com/reglet-dev/wapc-host/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewPool_InvalidSize(t *testing.T) {
	_, err := host.NewPool(context.Background(), tu.WapcGuest(tu.FullGuest()), 0)

	var ce *errors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "size", ce.Field)
}

func TestNewPool_InvalidGuest(t *testing.T) {
	_, err := host.NewPool(context.Background(), []byte("junk"), 2)

	var ie *errors.InstantiationError
	require.ErrorAs(t, err, &ie)
}

func TestPool_ConcurrentInvoke(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	pool, err := host.NewPool(ctx, tu.WapcGuest(tu.FullGuest()), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, pool.Size())

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte(fmt.Sprintf("caller %d", i))
			resp, err := pool.Invoke(ctx, tu.OpHello, payload)
			if err != nil {
				errs <- err
				return
			}
			if string(resp) != "Hello, "+string(payload) {
				errs <- fmt.Errorf("caller %d got %q", i, resp)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	require.NoError(t, pool.Close(ctx))
	require.NoError(t, pool.Close(ctx))
}

func TestPool_GetWaitsForContext(t *testing.T) {
	ctx := context.Background()
	pool, err := host.NewPool(ctx, tu.WapcGuest(tu.FullGuest()), 1)
	require.NoError(t, err)
	defer pool.Close(ctx)

	e, err := pool.Get(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = pool.Get(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Put(e)
	again, err := pool.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, e, again)
	pool.Put(again)
}

func TestPool_Closed(t *testing.T) {
	ctx := context.Background()
	pool, err := host.NewPool(ctx, tu.WapcGuest(tu.FullGuest()), 2)
	require.NoError(t, err)
	require.NoError(t, pool.Close(ctx))

	_, err = pool.Get(ctx)
	assert.ErrorIs(t, err, errors.ErrEngineClosed)

	outcome := pool.GuestCall(ctx, tu.OpEcho, nil)
	assert.ErrorIs(t, outcome.Err, errors.ErrEngineClosed)
}

func TestPool_EnginesAreIndependent(t *testing.T) {
	ctx := context.Background()
	pool, err := host.NewPool(ctx, tu.WapcGuest(tu.FullGuest()), 2)
	require.NoError(t, err)
	defer pool.Close(ctx)

	a, err := pool.Get(ctx)
	require.NoError(t, err)
	b, err := pool.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	tu.AssertFailureMessage(t, tu.GuestErrorMessage, a.GuestCall(ctx, tu.OpFail, nil))
	tu.AssertSuccessPayload(t, []byte("b"), b.GuestCall(ctx, tu.OpEcho, []byte("b")))

	pool.Put(a)
	pool.Put(b)
}
