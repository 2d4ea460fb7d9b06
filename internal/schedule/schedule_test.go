package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestAdd(t *testing.T) {
	s := New(context.Background())

	require.NoError(t, s.Add("refresh", "*/15 * * * *", noop))
	require.NoError(t, s.Add("capture", "", noop))
	assert.Equal(t, 1, s.Len())

	err := s.Add("broken", "every tuesday", noop)
	assert.ErrorContains(t, err, "broken")
	assert.Equal(t, 1, s.Len())
}

func TestStopCancelsJobContext(t *testing.T) {
	s := New(context.Background())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	assert.Error(t, s.ctx.Err())
}
