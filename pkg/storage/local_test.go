package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T) *localDisk {
	t.Helper()
	return &localDisk{root: t.TempDir(), baseURL: "http://localhost:5000/storage"}
}

func TestLocalDiskRoundTrip(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Put("products/p1/front.jpg", []byte("jpeg bytes")))
	assert.True(t, d.Exists("products/p1/front.jpg"))

	data, err := d.Get("products/p1/front.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	assert.Equal(t, "http://localhost:5000/storage/products/p1/front.jpg", d.URL("products/p1/front.jpg"))

	require.NoError(t, d.Delete("products/p1/front.jpg"))
	assert.False(t, d.Exists("products/p1/front.jpg"))

	// Deleting a missing file is not an error.
	require.NoError(t, d.Delete("products/p1/front.jpg"))
}

func TestLocalDiskPutStream(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.PutStream("a/b.txt", bytes.NewReader([]byte("hello"))))

	data, err := d.Get("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalDiskGetMissing(t *testing.T) {
	d := newTestDisk(t)

	_, err := d.Get("nope.txt")
	assert.Error(t, err)
}
