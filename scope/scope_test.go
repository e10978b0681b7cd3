package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vdobler/rq/value"
)

func TestSetPreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Set("b", value.Integer(2), false)
	s.Set("a", value.Integer(1), false)
	s.Set("b", value.Integer(3), false)
	assert.Equal(t, []string{"b", "a"}, s.Names())
	v, ok := s.Get("b")
	assert.True(t, ok)
	i, _ := v.Value.Integer()
	assert.Equal(t, int64(3), i)
}

func TestSecretCannotBeDemoted(t *testing.T) {
	s := New()
	s.Set("password", value.String("s3cr3t"), true)
	s.Set("password", value.String("s3cr3t2"), false)
	v, _ := s.Get("password")
	assert.True(t, v.Secret)
}

func TestCopyIsIndependent(t *testing.T) {
	s := New()
	s.Set("x", value.Integer(1), false)
	c := s.Copy()
	c.Set("x", value.Integer(2), false)
	v, _ := s.Get("x")
	i, _ := v.Value.Integer()
	assert.Equal(t, int64(1), i)
}

func TestSecretStrings(t *testing.T) {
	s := New()
	s.Set("password", value.String("s3cr3t"), true)
	s.Set("host", value.String("example.com"), false)
	assert.Equal(t, []string{"s3cr3t"}, s.SecretStrings())
}
