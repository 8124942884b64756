package remotepath

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampGenerator(t *testing.T) {
	g := NewTimestampGenerator()
	now := time.UnixMilli(1736899200000)

	assert.Equal(t, "resources/web/1736899200000.png", g.GenerateKey("photo.png", now))
	assert.Equal(t, "resources/web/1736899200000", g.GenerateKey("README", now))
	assert.Equal(t, "resources/web/1736899200000.gz", g.GenerateKey("dump.tar.gz", now))
}

func TestTimestampGeneratorCustomPrefix(t *testing.T) {
	g := &TimestampGenerator{Prefix: "/resources/mobile/"}
	now := time.UnixMilli(42)

	assert.Equal(t, "resources/mobile/42.pdf", g.GenerateKey("syllabus.pdf", now))
}

func TestTimestampGeneratorSameMillisecondCollision(t *testing.T) {
	// Known weakness of the flat scheme: same extension plus same
	// millisecond yields the same key.
	g := NewTimestampGenerator()
	now := time.UnixMilli(1736899200000)

	assert.Equal(t, g.GenerateKey("a.png", now), g.GenerateKey("b.png", now))
}

func TestUniqueGenerator(t *testing.T) {
	g := NewUniqueGenerator()
	now := time.UnixMilli(1736899200000)

	key := g.GenerateKey("photo.png", now)
	assert.Regexp(t, regexp.MustCompile(`^resources/web/1736899200000-[0-9a-f]{8}\.png$`), key)
}

func TestUniqueGeneratorNoSameMillisecondCollisions(t *testing.T) {
	g := NewUniqueGenerator()
	now := time.UnixMilli(1736899200000)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := g.GenerateKey("photo.png", now)
		assert.False(t, seen[key], fmt.Sprintf("duplicate key %s", key))
		seen[key] = true
	}
}

func TestTypeHint(t *testing.T) {
	assert.Equal(t, "png", TypeHint("photo.png"))
	assert.Equal(t, "", TypeHint("README"))
	assert.Equal(t, "gz", TypeHint("dump.tar.gz"))
}
