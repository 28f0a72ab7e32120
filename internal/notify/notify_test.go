package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_DrainEmptiesAndPreservesOrder(t *testing.T) {
	f := NewFeed()
	f.Error("first")
	f.Success("second")

	got := f.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)

	assert.Empty(t, f.Drain(), "notifications are shown once")
}

func TestFeed_DropsOldestWhenFull(t *testing.T) {
	f := NewFeed()
	for i := 0; i < maxEntries+10; i++ {
		f.Info(fmt.Sprintf("msg %d", i))
	}

	got := f.Drain()
	require.Len(t, got, maxEntries)
	assert.Equal(t, "msg 10", got[0].Message)
}
