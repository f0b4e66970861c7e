package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogs(t *testing.T) {
	catalogs := DefaultCatalogs()
	require.Len(t, catalogs, 2)

	central, ai := catalogs[0], catalogs[1]
	assert.Equal(t, "Central Library", central.Name)
	assert.Equal(t, []int64{101, 102}, bookIDs(central.Books()))
	assert.Equal(t, []int64{1, 2}, memberIDs(central.Members()))
	alice, _ := central.Member(1)
	assert.Equal(t, RoleStudent, alice.Role())
	bob, _ := central.Member(2)
	assert.Equal(t, RoleFaculty, bob.Role())

	assert.Equal(t, "AI Library", ai.Name)
	b, ok := ai.FindBook(201)
	require.True(t, ok)
	assert.Equal(t, "AI: A Modern Approach", b.Title)
	assert.Equal(t, []int64{3, 4}, memberIDs(ai.Members()))
}

func TestDefaultCatalogsAreFresh(t *testing.T) {
	first := DefaultCatalogs()
	_, _, err := first[0].Borrow(1, 101)
	require.NoError(t, err)

	b, _ := DefaultCatalogs()[0].FindBook(101)
	assert.True(t, b.Available())
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := `catalogs:
  - name: Branch
    books:
      - {id: 1, title: Dune, author: Frank Herbert}
    members:
      - {id: 9, name: Eve, role: Faculty}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	catalogs, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "Branch", catalogs[0].Name)
	eve, ok := catalogs[0].Member(9)
	require.True(t, ok)
	assert.Equal(t, RoleFaculty, eve.Role())
}

func TestLoadSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no catalogs", data: "catalogs: []\n"},
		{name: "bad role", data: "catalogs:\n  - name: X\n    members:\n      - {id: 1, name: A, role: janitor}\n"},
		{name: "bad yaml", data: "catalogs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(strings.NewReader(tt.data))
			require.Error(t, err)
		})
	}

	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
