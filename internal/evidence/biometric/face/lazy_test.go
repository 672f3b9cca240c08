package face_test

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/evidence/biometric/face/mocks"
	"kycgate/pkg/testutil"
)

type closingEngine struct {
	*mocks.MockEngine
	closed atomic.Bool
}

func (c *closingEngine) Close() error {
	c.closed.Store(true)
	return nil
}

func TestLazyRetriesAfterFailedLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	img := testutil.Solid(4, 4, color.White)
	engine.EXPECT().Detect(gomock.Any(), img).Return([]face.Detection{{W: 1, H: 1}}, nil)

	var calls atomic.Int32
	lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("model download failed")
		}
		return engine, nil
	}, nil)

	_, err := lazy.Detect(context.Background(), img)
	require.Error(t, err)
	assert.False(t, lazy.Loaded())

	faces, err := lazy.Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Len(t, faces, 1)
	assert.True(t, lazy.Loaded())
	assert.Equal(t, int32(2), calls.Load())
}

func TestLazyLoadsOnceUnderConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	var calls atomic.Int32
	lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return engine, nil
	}, nil)

	result := testutil.RunConcurrent(20, func(int) error {
		_, err := lazy.Get(context.Background())
		return err
	})

	assert.Equal(t, int32(20), result.Successes)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazyCloseReleasesEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := &closingEngine{MockEngine: mocks.NewMockEngine(ctrl)}
	lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
		return engine, nil
	}, nil)

	_, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, lazy.Close())

	assert.True(t, engine.closed.Load())
	assert.False(t, lazy.Loaded())
	assert.ErrorIs(t, lazy.Ready(context.Background()), face.ErrNotLoaded)
}

func TestLazyReadyDoesNotLoad(t *testing.T) {
	var calls atomic.Int32
	lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
		calls.Add(1)
		return nil, errors.New("unexpected load")
	}, nil)

	assert.ErrorIs(t, lazy.Ready(context.Background()), face.ErrNotLoaded)
	assert.Zero(t, calls.Load())
}

func TestLazyReadyDoesNotWaitForLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	release := make(chan struct{})
	started := make(chan struct{})
	lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
		close(started)
		<-release
		return engine, nil
	}, nil)

	loadDone := make(chan error, 1)
	go func() {
		_, err := lazy.Get(context.Background())
		loadDone <- err
	}()
	<-started

	readyDone := make(chan error, 1)
	go func() { readyDone <- lazy.Ready(context.Background()) }()
	select {
	case err := <-readyDone:
		assert.ErrorIs(t, err, face.ErrNotLoaded)
	case <-time.After(time.Second):
		t.Fatal("Ready blocked on an in-flight load")
	}

	close(release)
	require.NoError(t, <-loadDone)
	assert.NoError(t, lazy.Ready(context.Background()))
}

func TestLazyWarm(t *testing.T) {
	t.Run("retries until a load succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mocks.NewMockEngine(ctrl)

		var calls atomic.Int32
		lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
			if calls.Add(1) < 3 {
				return nil, errors.New("model download failed")
			}
			return engine, nil
		}, nil)

		require.NoError(t, lazy.Warm(context.Background(), time.Millisecond))
		assert.Equal(t, int32(3), calls.Load())
		assert.NoError(t, lazy.Ready(context.Background()))
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		lazy := face.NewLazy(func(context.Context) (face.Engine, error) {
			return nil, errors.New("model download failed")
		}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := lazy.Warm(ctx, 5*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, lazy.Loaded())
	})
}
