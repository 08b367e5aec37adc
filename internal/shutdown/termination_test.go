package shutdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	m := New()

	assert.NotPanics(t, func() { m.Terminate("revoked") })

	var got []string
	m.SetHandler(func(reason string) { got = append(got, reason) })
	m.SetHandler(nil)

	m.Terminate("expired: License has expired")
	assert.Equal(t, []string{"expired: License has expired"}, got)
}
