package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	assert.Equal(t, "hello everyone", Redact("hello everyone"))
	assert.Equal(t, "what the ████", Redact("what the fuck"))
	assert.Equal(t, "████ happens", Redact("SHIT happens"))

	// Only whole words are touched.
	assert.Equal(t, "the shitake mushroom", Redact("the shitake mushroom"))
}
