package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualNumericCrossType(t *testing.T) {
	assert.True(t, Equal(Integer(3), Float(3.0)))
	assert.True(t, Equal(BigInteger("42"), Integer(42)))
	assert.False(t, Equal(Integer(3), Integer(4)))
}

func TestEqualObjectOrderInsensitive(t *testing.T) {
	a := Object([]Entry{{"a", Integer(1)}, {"b", Integer(2)}})
	b := Object([]Entry{{"b", Integer(2)}, {"a", Integer(1)}})
	assert.True(t, Equal(a, b))
}

func TestEqualListOrderSensitive(t *testing.T) {
	a := List([]Value{Integer(1), Integer(2)})
	b := List([]Value{Integer(2), Integer(1)})
	assert.False(t, Equal(a, b))
}

func TestLessTypeMismatch(t *testing.T) {
	_, ok := Less(String("a"), Integer(1))
	assert.False(t, ok)
}

func TestLenEmptyList(t *testing.T) {
	n, ok := List(nil).Len()
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}
