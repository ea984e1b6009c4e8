package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsStableAndOrderSensitive(t *testing.T) {
	assert.Equal(t, Key("weather", "51.5"), Key("weather", "51.5"))
	assert.NotEqual(t, Key("weather", "51.5"), Key("51.5", "weather"))
}

func TestGetMissingKey(t *testing.T) {
	c := New(time.Minute)
	_, ok := c.Get(Key("nothing"))
	assert.False(t, ok)
}

func TestPutAndGet(t *testing.T) {
	c := New(time.Minute)
	c.Put(Key("weather"), "sunny")

	got, ok := c.Get(Key("weather"))
	assert.True(t, ok)
	assert.Equal(t, "sunny", got)
}

func TestExpiredEntryIsEvicted(t *testing.T) {
	c := New(time.Millisecond)
	c.Put(Key("weather"), "sunny")

	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(Key("weather"))
	assert.False(t, ok)
}
