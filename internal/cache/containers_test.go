package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenedContainers_NewOpenedContainers(t *testing.T) {
	c := NewOpenedContainers()

	require.NotNil(t, c)
	assert.NotNil(t, c.owners)
	assert.Equal(t, 0, c.Len())
}

func TestOpenedContainers_MarkOpened(t *testing.T) {
	c := NewOpenedContainers()

	assert.True(t, c.MarkOpened("owner1"), "first open must count")
	assert.False(t, c.MarkOpened("owner1"), "second open of the same owner must not count")
	assert.True(t, c.MarkOpened("owner2"))
	assert.True(t, c.Seen("owner1"))
	assert.False(t, c.Seen("owner3"))
	assert.Equal(t, 2, c.Len())
}

func TestOpenedContainers_Reset(t *testing.T) {
	c := NewOpenedContainers()
	c.MarkOpened("owner1")

	c.Reset()

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.MarkOpened("owner1"))
}

func TestTemplateSet(t *testing.T) {
	s := NewTemplateSet("tpl-a", "", "tpl-b")

	assert.Len(t, s, 2)
	assert.True(t, s.Has("tpl-a"))
	assert.False(t, s.Has(""))
	assert.False(t, TemplateSet(nil).Has("tpl-a"))
}
