package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMemoryInfo(t *testing.T) {
	t.Parallel()

	raw := "# Memory\r\n" +
		"used_memory:1048576\r\n" +
		"used_memory_human:1.00M\r\n" +
		"used_memory_rss:2000000\r\n" +
		"maxmemory:268435456\r\n" +
		"maxmemory_human:256.00M\r\n" +
		"maxmemory_policy:allkeys-lru\r\n"

	info := parseMemoryInfo(raw)

	assert.Equal(t, MemoryInfo{
		UsedBytes: 1048576,
		UsedHuman: "1.00M",
		MaxBytes:  268435456,
		Policy:    PolicyAllKeysLRU,
	}, info)
}

func TestParseMemoryInfo_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MemoryInfo{}, parseMemoryInfo(""))
}
