package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func TestSinkWritesCSVAndMetadata(t *testing.T) {
	dir := t.TempDir()
	spec := &core.Specification{
		Version:  "1",
		Metadata: core.Metadata{DatasetName: "demo"},
		Nodes: []*core.NodeDescriptor{
			{Name: "user", Kind: core.NodeEntity, PK: "user_id", Columns: []*core.ColumnDescriptor{
				{Name: "user_id", Type: core.TypeInteger},
				{Name: "name", Type: core.TypeString},
			}},
		},
	}

	s, err := New(dir, spec, 42)
	require.NoError(t, err)

	tbl := table.NewTable("user", "user_id", 2)
	id := tbl.AddColumn("user_id", table.KindInt)
	id.SetInt(0, 1)
	id.SetInt(1, 2)
	name := tbl.AddColumn("name", table.KindString)
	name.SetString(0, "Ada")
	name.SetString(1, "Grace")

	require.NoError(t, s.WriteTable(tbl))
	require.NoError(t, s.Close())

	body, err := os.ReadFile(filepath.Join(dir, "user.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "user_id,name")
	assert.Contains(t, string(body), "1,Ada")
	assert.Contains(t, string(body), "2,Grace")

	_, err = os.Stat(filepath.Join(dir, "user.manifest.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "_metadata.json"))
	assert.NoError(t, err)
}
