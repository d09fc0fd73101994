package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	got := Get()
	assert.Equal(t, strings.TrimSpace(raw), got)
	assert.NotEmpty(t, got)
	assert.True(t, strings.HasPrefix(got, "v"), "version strings carry a v prefix")
}
