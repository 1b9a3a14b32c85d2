package common

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	palette := []float32{1, 2, 3}
	b := SliceToBytes(palette)
	require.Len(t, b, 12)
	assert.Equal(t, unsafe.Pointer(&palette[0]), unsafe.Pointer(&b[0]), "the bytes view the original slice")
}
