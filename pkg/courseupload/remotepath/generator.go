// Package remotepath derives object-store destination keys for uploads.
package remotepath

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPrefix is the key prefix the course platform expects for
// web-uploaded resources.
const DefaultPrefix = "resources/web"

// Generator defines the interface for remote path derivation strategies
type Generator interface {
	// GenerateKey derives the destination key for a file uploaded at now
	GenerateKey(fileName string, now time.Time) string
}

// TimestampGenerator reproduces the flat millisecond scheme:
// {prefix}/{unixMillis}{ext}. Two same-extension files uploaded in the same
// millisecond collide; kept only for compatibility with existing tooling.
type TimestampGenerator struct {
	Prefix string
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{Prefix: DefaultPrefix}
}

func (g *TimestampGenerator) GenerateKey(fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d%s", g.prefix(), now.UnixMilli(), Ext(fileName))
}

func (g *TimestampGenerator) prefix() string {
	if g.Prefix == "" {
		return DefaultPrefix
	}
	return strings.Trim(g.Prefix, "/")
}

// UniqueGenerator appends a random component to the millisecond timestamp:
// {prefix}/{unixMillis}-{8 hex chars}{ext}. Collision-safe under concurrent
// uploads of identically named files.
type UniqueGenerator struct {
	Prefix string
}

func NewUniqueGenerator() *UniqueGenerator {
	return &UniqueGenerator{Prefix: DefaultPrefix}
}

func (g *UniqueGenerator) GenerateKey(fileName string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s%s", g.prefix(), now.UnixMilli(), suffix, Ext(fileName))
}

func (g *UniqueGenerator) prefix() string {
	if g.Prefix == "" {
		return DefaultPrefix
	}
	return strings.Trim(g.Prefix, "/")
}

// Ext returns the extension of fileName including the leading dot, or the
// empty string when the name has none.
func Ext(fileName string) string {
	return path.Ext(fileName)
}

// TypeHint returns the extension of fileName without the leading dot; the
// course service uses it as the registered content type.
func TypeHint(fileName string) string {
	return strings.TrimPrefix(path.Ext(fileName), ".")
}

// NewRecommendedGenerator returns the generator new installations should use.
func NewRecommendedGenerator() Generator {
	return NewUniqueGenerator()
}
