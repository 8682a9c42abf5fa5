package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/alsroute/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := version.String()

	assert.NotEmpty(t, version.GetVersion())
	assert.Contains(t, s, version.GoVersion)
	assert.Contains(t, s, version.Platform)
}
