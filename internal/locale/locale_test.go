package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "de", Resolve("DE"))
	assert.Equal(t, "de", Resolve("de"))
	assert.Equal(t, "pt_BR", Resolve("BR"))
	assert.Equal(t, DefaultLocale, Resolve("ZZ"))
	assert.Equal(t, DefaultLocale, Resolve(""))
}
