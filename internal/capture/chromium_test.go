package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekPNG_RequiresURLAndOutput(t *testing.T) {
	err := WeekPNG(context.Background(), Options{OutputPath: "/tmp/x.png"})
	assert.ErrorContains(t, err, "URL is required")

	err = WeekPNG(context.Background(), Options{URL: "http://127.0.0.1:8080/"})
	assert.ErrorContains(t, err, "OutputPath is required")
}

func TestOptionsNormalize(t *testing.T) {
	o := Options{URL: "http://x/", OutputPath: "out.png"}
	require.NoError(t, o.normalize())
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o = Options{URL: "http://x/", OutputPath: "out.png", Width: 800, Height: 600, Timeout: time.Second}
	require.NoError(t, o.normalize())
	assert.Equal(t, 800, o.Width)
	assert.Equal(t, time.Second, o.Timeout)
}
