package contracts_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/store/contracts"
)

func TestDir_SaveOpenRemove(t *testing.T) {
	// GIVEN: An empty contracts directory
	dir, err := contracts.New(t.TempDir())
	require.NoError(t, err)

	// WHEN: A document is saved twice
	require.NoError(t, dir.Save("L001", strings.NewReader("%PDF-1.4 first")))
	require.NoError(t, dir.Save("L001", strings.NewReader("%PDF-1.4 second")))

	// THEN: The latest one is served
	f, err := dir.Open("L001")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 second", string(body))
	assert.True(t, dir.Exists("L001"))

	require.NoError(t, dir.Remove("L001"))
	require.NoError(t, dir.Remove("L001"), "removing twice is not an error")
	_, err = dir.Open("L001")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestDir_RejectsUnsafeCodes(t *testing.T) {
	dir, err := contracts.New(t.TempDir())
	require.NoError(t, err)

	for _, code := range []string{"", "../etc", "L001/x", "a b"} {
		assert.ErrorIs(t, dir.Save(code, strings.NewReader("x")), contracts.ErrInvalidCode, code)
	}
}

func TestDir_RemoveAll(t *testing.T) {
	dir, err := contracts.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, dir.Save("L001", strings.NewReader("a")))
	require.NoError(t, dir.Save("L002", strings.NewReader("b")))

	require.NoError(t, dir.RemoveAll())

	assert.False(t, dir.Exists("L001"))
	assert.False(t, dir.Exists("L002"))
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "Contrat_Awa_Diop.pdf", contracts.DownloadName("Awa  Diop"))
	assert.Equal(t, "contrat.pdf", contracts.DownloadName(""))
}
