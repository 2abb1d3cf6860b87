package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v, err := Parse("1.0")
		require.NoError(t, err)
		assert.Equal(t, uint16(1), v.Major)
		assert.Equal(t, uint16(0), v.Minor)
		assert.Equal(t, "1.0", v.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "1", "1.", ".0", "1.0.0", "a.b", "-1.0"} {
			_, err := Parse(s)
			assert.Error(t, err, "expected error for %q", s)
		}
	})

	t.Run("current parses", func(t *testing.T) {
		_, err := Parse(Current)
		assert.NoError(t, err)
	})
}

func TestCompatible(t *testing.T) {
	v10 := ProtocolVersion{Major: 1, Minor: 0}
	v12 := ProtocolVersion{Major: 1, Minor: 2}
	v20 := ProtocolVersion{Major: 2, Minor: 0}

	assert.True(t, v10.Compatible(v12))
	assert.True(t, v12.Compatible(v10))
	assert.False(t, v10.Compatible(v20))
}

func TestALPN(t *testing.T) {
	assert.Equal(t, "chardev/1", ALPNProtocol(1))

	major, err := MajorFromALPN("chardev/1")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), major)

	_, err = MajorFromALPN("http/1.1")
	assert.Error(t, err)

	_, err = MajorFromALPN("chardev/")
	assert.Error(t, err)

	protos := SupportedALPNProtocols()
	assert.Equal(t, []string{"chardev/1"}, protos)
}
