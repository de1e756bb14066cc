package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ApplyAndRead(t *testing.T) {
	store := newTestStore(t)

	batch := map[string][]byte{
		"n1": []byte("server config"),
		"n2": []byte("agent config"),
	}
	require.NoError(t, store.Apply(batch, []byte("descriptor")))

	data, err := store.ReadNode("n1")
	require.NoError(t, err)
	assert.Equal(t, []byte("server config"), data)

	descriptor, err := store.ReadDescriptor()
	require.NoError(t, err)
	assert.Equal(t, []byte("descriptor"), descriptor)
}

func TestStore_ReadMissingNodeReturnsNil(t *testing.T) {
	store := newTestStore(t)

	data, err := store.ReadNode("ghost")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_ApplyFailureLeavesPriorTreeIntact(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Apply(map[string][]byte{"n1": []byte("v1")}, []byte("d1")))

	// A name with a path separator cannot be staged; the whole batch
	// must abort before the swap point.
	bad := map[string][]byte{
		"n1":        []byte("v2"),
		"sub/dir/x": []byte("oops"),
	}
	err := store.Apply(bad, []byte("d2"))
	require.Error(t, err)

	data, err := store.ReadNode("n1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data, "failed batch must not half-apply")

	descriptor, err := store.ReadDescriptor()
	require.NoError(t, err)
	assert.Equal(t, []byte("d1"), descriptor)

	existing, err := store.ExistingNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, existing)
}

func TestStore_ApplyRemovesUndeclaredArtifacts(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Apply(map[string][]byte{"n1": []byte("a"), "n2": []byte("b")}, []byte("d")))
	require.NoError(t, store.Apply(map[string][]byte{"n1": []byte("a")}, []byte("d")))

	existing, err := store.ExistingNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, existing)

	gone, err := store.ReadNode("n2")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStore_TokenLifecycle(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.HasToken("n2"))
	require.NoError(t, store.WriteToken("n2", []byte("secret")))
	assert.True(t, store.HasToken("n2"))

	require.NoError(t, store.PurgeToken("n2"))
	assert.False(t, store.HasToken("n2"))

	// Purging again is a success.
	require.NoError(t, store.PurgeToken("n2"))
}
