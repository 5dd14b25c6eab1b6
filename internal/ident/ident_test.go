package ident

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestFromName(t *testing.T) {
	assert.Equal(t, FromName("user/ana@x.io"), FromName(" User/Ana@X.io "))
	assert.NotEqual(t, FromName("user/ana@x.io"), FromName("user/bob@x.io"))
}

func TestNextSeq(t *testing.T) {
	n := 0
	assert.Equal(t, "1", NextSeq(&n))
	assert.Equal(t, "2", NextSeq(&n))
	assert.Equal(t, 2, n)
}

func TestSeqFloor(t *testing.T) {
	assert.Equal(t, 12, SeqFloor([]string{"3", "12", "legacy-id", "7"}))
	assert.Equal(t, 0, SeqFloor(nil))
}
