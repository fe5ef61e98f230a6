package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

// ReadDir reconstructs every node's Table from the CSV files a Sink
// previously wrote into dir. Physical column kinds are sniffed from the
// cell contents rather than taken from the declared LogicalType, since a
// generator may store a logically-integer column as KindFloat (spec
// §9 "Value kinds vs logical types").
func ReadDir(dir string, spec *core.Specification) (map[string]*table.Table, error) {
	out := make(map[string]*table.Table, len(spec.Nodes))
	for _, node := range spec.Nodes {
		path := filepath.Join(dir, node.Name+".csv")
		t, err := readTable(path, node.Name, node.PK)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out[node.Name] = t
	}
	return out, nil
}

func readTable(path, name, pk string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sink/csv: %s: %w", path, err)
	}
	if len(records) == 0 {
		return table.NewTable(name, pk, 0), nil
	}
	header := records[0]
	rows := records[1:]

	t := table.NewTable(name, pk, len(rows))
	for colIdx, colName := range header {
		values := make([]string, len(rows))
		for i, row := range rows {
			if colIdx < len(row) {
				values[i] = row[colIdx]
			}
		}
		col := t.AddColumn(colName, sniffKind(values))
		for i, v := range values {
			setCell(col, i, v)
		}
	}
	return t, nil
}

func sniffKind(values []string) table.ValueKind {
	sawAny := false
	allInt, allFloat, allBool, allTime := true, true, true, true
	for _, v := range values {
		if v == "" {
			continue
		}
		sawAny = true
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
		}
		if _, err := strconv.ParseBool(v); err != nil {
			allBool = false
		}
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			allTime = false
		}
	}
	if !sawAny {
		return table.KindString
	}
	switch {
	case allInt:
		return table.KindInt
	case allFloat:
		return table.KindFloat
	case allTime:
		return table.KindTime
	case allBool:
		return table.KindBool
	default:
		return table.KindString
	}
}

func setCell(col *table.Column, i int, v string) {
	if v == "" {
		return
	}
	switch col.Kind {
	case table.KindInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		col.SetInt(i, n)
	case table.KindFloat:
		n, _ := strconv.ParseFloat(v, 64)
		col.SetFloat(i, n)
	case table.KindBool:
		b, _ := strconv.ParseBool(v)
		col.SetBool(i, b)
	case table.KindTime:
		tm, _ := time.Parse(time.RFC3339, v)
		col.SetTime(i, tm)
	default:
		col.SetString(i, v)
	}
}
