package transitfusion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

func TestNewRefresher_InvalidSchedule(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:1/gtfs.zip")
	_, err := NewRefresher(svc, "every morning")
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestRefresher_RunOnce(t *testing.T) {
	srv := newStaticServer(t, 0, feedZip(t))
	svc := newTestService(t, srv.URL)
	r, err := NewRefresher(svc, "0 4 * * *")
	require.NoError(t, err)

	// Nothing loaded yet.
	r.RunOnce()
	assert.EqualValues(t, 0, srv.hits.Load())

	require.NoError(t, svc.EnsureAgency(context.Background(), testAgency))
	before, err := svc.Store().Current()
	require.NoError(t, err)

	r.RunOnce()
	assert.EqualValues(t, 2, srv.hits.Load())
	after, err := svc.Store().Current()
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

func TestRefresher_StartStop(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:1/gtfs.zip")
	r, err := NewRefresher(svc, "0 4 * * *")
	require.NoError(t, err)

	r.Start()
	next := r.Next()
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 4, next.Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
}
