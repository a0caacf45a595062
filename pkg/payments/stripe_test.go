package payments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/deviceexpress/pkg/payments"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(32000), payments.MinorUnits(320))
	assert.Equal(t, int64(19999), payments.MinorUnits(199.99))
	// Float artifacts must round, not truncate.
	assert.Equal(t, int64(1010), payments.MinorUnits(10.1))
	assert.Equal(t, int64(0), payments.MinorUnits(0))
}

func TestIdempotencyKeyStable(t *testing.T) {
	a := payments.IdempotencyKey("64f1c2e9a1b2c3d4e5f60718")
	b := payments.IdempotencyKey("64f1c2e9a1b2c3d4e5f60718")
	c := payments.IdempotencyKey("another-booking")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36)
}
