package generate

import (
	"fmt"
	"math"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenChoice, generateChoice)
}

func generateChoice(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Choice

	values, err := choiceValues(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("choice: column %q has no candidate values", ctx.Column.Name)
	}

	col := table.NewColumn(ctx.Column.Name, table.KindString, ctx.Rows)

	// Weighting modes only apply to an inline values list: a choices_ref
	// draws uniformly from whatever rows the referenced column already
	// contains, since there's no stable rank to weight by.
	if p.ChoicesRef != "" {
		for i := 0; i < ctx.Rows; i++ {
			col.SetString(i, values[ctx.Rand.Intn(len(values))])
		}
		return col, nil
	}

	cumulative := cumulativeWeights(weightsFor(p, len(values)))
	for i := 0; i < ctx.Rows; i++ {
		col.SetString(i, sampleWeighted(values, cumulative, ctx.Rand.Float64()))
	}
	return col, nil
}

func choiceValues(ctx *Context, p *core.ChoiceParams) ([]string, error) {
	if p.ChoicesRef == "" {
		return p.Values, nil
	}
	tableName, colName, ok := splitRef(p.ChoicesRef)
	if !ok {
		return nil, fmt.Errorf("choice: invalid choices_ref %q", p.ChoicesRef)
	}
	src, ok := ctx.Tables[tableName]
	if !ok {
		return nil, fmt.Errorf("choice: table %q for choices_ref is not yet materialized", tableName)
	}
	srcCol := src.Column(colName)
	if srcCol == nil {
		return nil, fmt.Errorf("choice: column %q not found on table %q", colName, tableName)
	}
	values := make([]string, 0, srcCol.Len())
	for i := 0; i < srcCol.Len(); i++ {
		v := srcCol.At(i)
		if v == nil {
			continue
		}
		values = append(values, fmt.Sprint(v))
	}
	return values, nil
}

// weightsFor computes the relative weight of each of n values for the
// declared weighting mode (spec §4.3).
func weightsFor(p *core.ChoiceParams, n int) []float64 {
	switch p.WeightsKind {
	case core.WeightsExplicit:
		if len(p.Weights) == n {
			return p.Weights
		}
		return uniform(n)
	case core.WeightsZipf:
		w := make([]float64, n)
		for i := range w {
			w[i] = 1.0 / math.Pow(float64(i+1), p.ZipfAlpha)
		}
		return w
	case core.WeightsHeadTail:
		// The first ceil(h*n) values ("head") share weight a; the rest
		// ("tail") share weight 1.
		headCount := int(math.Ceil(p.HeadTailH * float64(n)))
		if headCount < 1 {
			headCount = 1
		}
		if headCount > n {
			headCount = n
		}
		w := make([]float64, n)
		for i := range w {
			if i < headCount {
				w[i] = p.HeadTailA
			} else {
				w[i] = 1
			}
		}
		return w
	default:
		return uniform(n)
	}
}

func uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func cumulativeWeights(w []float64) []float64 {
	var total float64
	for _, x := range w {
		total += x
	}
	cum := make([]float64, len(w))
	var running float64
	for i, x := range w {
		running += x
		cum[i] = running / total
	}
	return cum
}

func sampleWeighted(values []string, cumulative []float64, draw float64) string {
	for i, c := range cumulative {
		if draw <= c {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func splitRef(ref string) (table, column string, ok bool) {
	dot := -1
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			dot = i
			break
		}
	}
	if dot <= 0 || dot >= len(ref)-1 {
		return "", "", false
	}
	return ref[:dot], ref[dot+1:], true
}
