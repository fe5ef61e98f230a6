// Package csv is the reference Sink implementation (spec §6.2): one CSV
// file plus a manifest per table, and a run-level metadata sidecar once
// every table has been written.
package csv

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/sink"
	"synthgen/internal/table"
)

// Sink writes every table to <dir>/<table>.csv with a sidecar
// <dir>/<table>.manifest.json, and a run-level <dir>/_metadata.json on
// Close.
type Sink struct {
	dir        string
	spec       *core.Specification
	masterSeed uint64

	nodes []sink.NodeMetadata
}

// New creates dir (if necessary) and returns a Sink that writes into it.
func New(dir string, spec *core.Specification, masterSeed uint64) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink/csv: %w", err)
	}
	return &Sink{dir: dir, spec: spec, masterSeed: masterSeed}, nil
}

// manifest is the per-table sidecar describing how to parse the CSV file.
type manifest struct {
	PrimaryKey string `json:"primary_key"`
	Delimiter  string `json:"delimiter"`
	Enclosure  string `json:"enclosure"`
}

func (s *Sink) WriteTable(t *table.Table) error {
	path := filepath.Join(s.dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink/csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.Columns()
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("sink/csv: %s: %w", t.Name, err)
	}

	row := make([]string, len(cols))
	for r := 0; r < t.Rows; r++ {
		for i, c := range cols {
			row[i] = cellString(c, r)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("sink/csv: %s: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("sink/csv: %s: %w", t.Name, err)
	}

	manifestBody, err := json.MarshalIndent(manifest{PrimaryKey: t.PK, Delimiter: ",", Enclosure: `"`}, "", "  ")
	if err != nil {
		return fmt.Errorf("sink/csv: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, t.Name+".manifest.json"), manifestBody, 0o644); err != nil {
		return fmt.Errorf("sink/csv: %w", err)
	}

	s.nodes = append(s.nodes, sink.NodeMetadata{
		Name:       t.Name,
		Kind:       nodeKind(s.spec, t.Name),
		RowCount:   t.Rows,
		PrimaryKey: t.PK,
		Columns:    columnMetadata(s.spec, t.Name),
	})
	return nil
}

func (s *Sink) Close() error {
	meta := sink.RunMetadata{
		Name:        s.spec.Metadata.DatasetName,
		Version:     s.spec.Version,
		MasterSeed:  s.masterSeed,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Nodes:       s.nodes,
	}
	body, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("sink/csv: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "_metadata.json"), body, 0o644)
}

func nodeKind(spec *core.Specification, name string) string {
	if n := spec.NodeByName(name); n != nil {
		return string(n.Kind)
	}
	return ""
}

func columnMetadata(spec *core.Specification, name string) []sink.ColumnMetadata {
	n := spec.NodeByName(name)
	if n == nil {
		return nil
	}
	out := make([]sink.ColumnMetadata, len(n.Columns))
	for i, c := range n.Columns {
		out[i] = sink.ColumnMetadata{Name: c.Name, Type: string(c.Type)}
	}
	return out
}

func cellString(c *table.Column, row int) string {
	if c.Null[row] {
		return ""
	}
	switch c.Kind {
	case table.KindInt:
		return strconv.FormatInt(c.Ints[row], 10)
	case table.KindFloat:
		return strconv.FormatFloat(c.Floats[row], 'f', -1, 64)
	case table.KindString:
		return c.Strings[row]
	case table.KindBool:
		return strconv.FormatBool(c.Bools[row])
	case table.KindTime:
		return c.Times[row].UTC().Format(time.RFC3339)
	default:
		return ""
	}
}
