package fingerprint

import (
	"testing"

	"ventas/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Deterministic(t *testing.T) {
	first := Build("Mozilla/5.0", "10.0.0.1", "Pixel 8")
	second := Build("Mozilla/5.0", "10.0.0.1", "Pixel 8")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, util.SHA256Hex("Mozilla/5.0"+"10.0.0.1"+"Pixel 8"), first)
}

func TestBuild_SensitiveToEachField(t *testing.T) {
	base := Build("Mozilla/5.0", "10.0.0.1", "Pixel 8")

	assert.NotEqual(t, base, Build("curl/8.0", "10.0.0.1", "Pixel 8"))
	assert.NotEqual(t, base, Build("Mozilla/5.0", "10.0.0.2", "Pixel 8"))
	assert.NotEqual(t, base, Build("Mozilla/5.0", "10.0.0.1", "iPhone"))
}

func TestBuild_EmptyValues(t *testing.T) {
	assert.Equal(t, util.SHA256Hex(""), Build("", "", ""))
}
