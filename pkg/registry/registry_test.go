package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scobi84/chardev-go/pkg/device"
)

func TestRegisterAssignsNumbers(t *testing.T) {
	r := NewNodeRegistry()

	first, err := r.Register("chardev", 0)
	require.NoError(t, err)
	assert.Equal(t, FirstMajor, first.Major)
	assert.Equal(t, 0, first.Minor)
	assert.Equal(t, "/dev/chardev", first.Path)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := r.Register("other", 1)
	require.NoError(t, err)
	assert.Equal(t, FirstMajor+1, second.Major)

	assert.Equal(t, 2, r.Count())
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewNodeRegistry()

	_, err := r.Register("chardev", 0)
	require.NoError(t, err)

	_, err = r.Register("chardev", 1)
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestUnregister(t *testing.T) {
	r := NewNodeRegistry()

	_, err := r.Register("chardev", 0)
	require.NoError(t, err)

	require.NoError(t, r.Unregister("chardev"))
	assert.Equal(t, 0, r.Count())

	assert.ErrorIs(t, r.Unregister("chardev"), ErrNodeNotFound)

	// The name is free again after unregistering
	_, err = r.Register("chardev", 0)
	assert.NoError(t, err)
}

func TestLookup(t *testing.T) {
	r := NewNodeRegistry()

	registered, err := r.Register("chardev", 3)
	require.NoError(t, err)

	found, err := r.Lookup("chardev")
	require.NoError(t, err)
	assert.Same(t, registered, found)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodeOpenCounts(t *testing.T) {
	r := NewNodeRegistry()

	node, err := r.Register("chardev", 0)
	require.NoError(t, err)

	dev := device.New(device.Config{Name: "chardev", Registry: node})

	require.NoError(t, dev.Open())
	assert.Equal(t, uint64(1), node.OpenCount())
	assert.Equal(t, uint64(1), node.TotalOpens())

	dev.Close()
	assert.Equal(t, uint64(0), node.OpenCount())
	assert.Equal(t, uint64(1), node.TotalOpens())

	// Total keeps growing across open/close cycles
	require.NoError(t, dev.Open())
	dev.Close()
	assert.Equal(t, uint64(2), node.TotalOpens())
}

func TestOnChangeCallback(t *testing.T) {
	r := NewNodeRegistry()

	node, err := r.Register("chardev", 0)
	require.NoError(t, err)

	var changes []uint64
	r.OnChange(func(n *Node) {
		changes = append(changes, n.OpenCount())
	})

	dev := device.New(device.Config{Name: "chardev", Registry: node})
	require.NoError(t, dev.Open())
	dev.Close()

	assert.Equal(t, []uint64{1, 0}, changes)
}

func TestTXTRoundTrip(t *testing.T) {
	info := &NodeInfo{
		Name:     "chardev",
		Tag:      2,
		Path:     "/dev/chardev",
		Capacity: 1024,
		Open:     true,
		Port:     9444,
	}

	records := EncodeTXT(info)
	decoded, err := DecodeTXT(records)
	require.NoError(t, err)

	assert.Equal(t, info.Name, decoded.Name)
	assert.Equal(t, info.Tag, decoded.Tag)
	assert.Equal(t, info.Path, decoded.Path)
	assert.Equal(t, info.Capacity, decoded.Capacity)
	assert.True(t, decoded.Open)
}

func TestDecodeTXTErrors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := DecodeTXT([]string{"tag=1"})
		assert.Error(t, err)
	})

	t.Run("bad tag", func(t *testing.T) {
		_, err := DecodeTXT([]string{"name=d", "tag=x"})
		assert.Error(t, err)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		info, err := DecodeTXT([]string{"name=d", "future=stuff", "malformed"})
		require.NoError(t, err)
		assert.Equal(t, "d", info.Name)
	})
}
