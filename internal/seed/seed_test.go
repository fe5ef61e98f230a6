package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive(42, "orders", "amount", "batch:0")
	b := Derive(42, "orders", "amount", "batch:0")
	assert.Equal(t, a, b)
}

func TestDeriveDistinguishesParts(t *testing.T) {
	base := Derive(42, "orders", "amount")

	t.Run("different master", func(t *testing.T) {
		assert.NotEqual(t, base, Derive(43, "orders", "amount"))
	})
	t.Run("different column", func(t *testing.T) {
		assert.NotEqual(t, base, Derive(42, "orders", "status"))
	})
	t.Run("different node", func(t *testing.T) {
		assert.NotEqual(t, base, Derive(42, "payments", "amount"))
	})
	t.Run("order matters", func(t *testing.T) {
		assert.NotEqual(t, Derive(42, "a", "b"), Derive(42, "b", "a"))
	})
}

func TestColumnAndRowDeriveIndependently(t *testing.T) {
	c0 := Column(7, "users", "created_at", 0)
	c1 := Column(7, "users", "created_at", 1)
	assert.NotEqual(t, c0, c1)

	r0 := Row(7, "orders", "fanout", 0)
	r1 := Row(7, "orders", "fanout", 1)
	assert.NotEqual(t, r0, r1)

	assert.NotEqual(t, c0, r0)
}
