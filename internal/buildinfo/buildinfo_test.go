package buildinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	oldVersion, oldRevision := Version, Revision
	t.Cleanup(func() { Version, Revision = oldVersion, oldRevision })

	Version = "1.2.0"
	Revision = "abc123"

	info := Get()
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "abc123", info.Revision)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "(version=1.2.0, branch=, revision=abc123)", info.String())
}
