package assembler

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = content
	}
	return entries
}

func TestZIP_RoundTrip(t *testing.T) {
	first := testImage(t, 30, 30, "image/jpeg")
	second := testImage(t, 40, 20, "image/png")
	third := testImage(t, 10, 50, "image/jpeg")
	set := mixedSet(first, second, third)

	doc, err := NewZIP(nopLogger()).Assemble(set, "My Export")
	require.NoError(t, err)

	assert.Equal(t, "application/zip", doc.ContentType)
	assert.Equal(t, "My Export.zip", doc.Filename)

	entries := readZip(t, doc.Bytes)
	require.Len(t, entries, 3, "one entry per successful image")

	assert.Equal(t, first.Data, entries["slide_001.jpg"])
	assert.Equal(t, second.Data, entries["slide_002.png"])
	assert.Equal(t, third.Data, entries["slide_003.jpg"])
}

func TestZIP_LexicalOrderMatchesInputOrder(t *testing.T) {
	set := mixedSet(
		testImage(t, 5, 5, "image/png"),
		testImage(t, 6, 6, "image/png"),
		testImage(t, 7, 7, "image/png"),
	)

	doc, err := NewZIP(nopLogger()).Assemble(set, "order")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(doc.Bytes), int64(len(doc.Bytes)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.True(t, sort.StringsAreSorted(names), "entry names must sort into presentation order: %v", names)
}

func TestZIP_AllFailed(t *testing.T) {
	doc, err := NewZIP(nopLogger()).Assemble(allFailedSet(2), "x")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrNoImages)
}
