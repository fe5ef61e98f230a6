package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func (r *Report) runBehavioral(spec *core.Specification, tables map[string]*table.Table, log *zap.Logger) {
	if spec.Targets == nil {
		return
	}
	if spec.Targets.WeekendShare != nil {
		r.checkWeekendShare(*spec.Targets.WeekendShare, tables)
	}
	for _, m := range spec.Targets.MeanInRange {
		r.checkMeanInRange(m, tables)
	}
	for _, ce := range spec.Targets.CompositeEffect {
		if ce.MAETolerance == nil || ce.MAPETolerance == nil {
			log.Info("composite_effect tolerance defaulted",
				zap.String("column", ce.Column),
				zap.Float64("mae_tolerance", ce.EffectiveMAETolerance()),
				zap.Float64("mape_tolerance", ce.EffectiveMAPETolerance()))
		}
		r.checkCompositeEffect(spec, ce, tables)
	}
}

func (r *Report) checkWeekendShare(target core.WeekendShareTarget, tables map[string]*table.Table) {
	name := fmt.Sprintf("weekend_share:%s", target.Column)
	col, ok := resolveColumn(target.Column, tables)
	if !ok || col.Kind != table.KindTime {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "column not found or not a datetime"})
		return
	}
	var total, weekend int
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] {
			continue
		}
		total++
		wd := col.Times[i].Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}
	if total == 0 {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "no non-null timestamps"})
		return
	}
	tolerance := target.Tolerance
	if tolerance <= 0 {
		tolerance = 0.05
	}
	share := float64(weekend) / float64(total)
	if math.Abs(share-target.Share) > tolerance {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: fmt.Sprintf("observed weekend share %.3f outside tolerance of target %.3f", share, target.Share)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusPass})
}

func (r *Report) checkMeanInRange(target core.MeanInRangeTarget, tables map[string]*table.Table) {
	name := fmt.Sprintf("mean_in_range:%s", target.Column)
	col, ok := resolveColumn(target.Column, tables)
	if !ok {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "column not found"})
		return
	}
	values := numericValues(col)
	if len(values) == 0 {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "no non-null numeric values"})
		return
	}
	mean, err := stats.Mean(values)
	if err != nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: fmt.Sprintf("mean computation failed: %v", err)})
		return
	}
	if mean < target.Min || mean > target.Max {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: fmt.Sprintf("sample mean %.4f outside [%g,%g]", mean, target.Min, target.Max)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusPass})
}

func numericValues(col *table.Column) stats.Float64Data {
	out := make(stats.Float64Data, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] {
			continue
		}
		if v, ok := numericAt(col, i); ok {
			out = append(out, v)
		}
	}
	return out
}

// checkCompositeEffect partitions a column's rows into those falling inside
// an effect window and those outside it, using the effect modifier declared
// on the target column to recover its join keys and window, then compares
// observed lift (affected mean / unaffected mean) against the expected lift
// implied by the effect table's multiplier or delta column.
func (r *Report) checkCompositeEffect(spec *core.Specification, target core.CompositeEffectTarget, tables map[string]*table.Table) {
	name := fmt.Sprintf("composite_effect:%s", target.Column)
	col, ok := resolveColumn(target.Column, tables)
	if !ok {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "column not found"})
		return
	}
	tableName, columnName, _ := splitRef(target.Column)
	node := spec.NodeByName(tableName)
	if node == nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "owning node not found"})
		return
	}
	params := findEffectParams(node, columnName, target.EffectTable)
	if params == nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "no effect modifier declared for this column/effect_table pair"})
		return
	}
	self := tables[tableName]
	effectTable := tables[params.Table]
	if self == nil || effectTable == nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "referenced tables not materialized"})
		return
	}
	selfTime := self.Column(params.TimeColumn)
	effectTime := effectTable.Column(params.TimeColumn)
	effectWindow := effectTable.Column(params.EffectWindowCol)
	if selfTime == nil || selfTime.Kind != table.KindTime || effectTime == nil || effectWindow == nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "effect join columns not found"})
		return
	}
	selfKeys := resolveColumns(self, params.KeyColumns)
	effectKeys := resolveColumns(effectTable, params.KeyColumns)
	if selfKeys == nil || effectKeys == nil {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "effect key columns not found"})
		return
	}

	var magnitudeCol *table.Column
	if params.MultiplierCol != "" {
		magnitudeCol = effectTable.Column(params.MultiplierCol)
	} else if params.DeltaCol != "" {
		magnitudeCol = effectTable.Column(params.DeltaCol)
	}

	var affected, unaffected stats.Float64Data
	var expectedLifts stats.Float64Data
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] || selfTime.Null[i] {
			continue
		}
		v, ok := numericAt(col, i)
		if !ok {
			continue
		}
		key := rowKeyValidate(selfKeys, i)
		t := selfTime.Times[i]
		matched := false
		for j := 0; j < effectTime.Len(); j++ {
			if effectTime.Null[j] || rowKeyValidate(effectKeys, j) != key {
				continue
			}
			start := effectTime.Times[j]
			end := start.Add(time.Duration(effectWindow.Floats[j] * 24 * float64(time.Hour)))
			if t.Before(start) || !t.Before(end) {
				continue
			}
			matched = true
			if magnitudeCol != nil && !magnitudeCol.Null[j] {
				if mv, ok := numericAt(magnitudeCol, j); ok {
					expectedLifts = append(expectedLifts, mv)
				}
			}
			break
		}
		if matched {
			affected = append(affected, v)
		} else {
			unaffected = append(unaffected, v)
		}
	}

	if len(affected) == 0 || len(unaffected) == 0 || len(expectedLifts) == 0 {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "not enough affected/unaffected rows to score composite effect"})
		return
	}
	affectedMean, _ := stats.Mean(affected)
	unaffectedMean, _ := stats.Mean(unaffected)
	expectedMean, _ := stats.Mean(expectedLifts)

	var observedLift float64
	if params.Op == core.EffectAdd {
		observedLift = affectedMean - unaffectedMean
	} else {
		if unaffectedMean == 0 {
			r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: "unaffected mean is zero, cannot score multiplicative lift"})
			return
		}
		observedLift = affectedMean / unaffectedMean
	}

	mae := math.Abs(observedLift - expectedMean)
	var mape float64
	if expectedMean != 0 {
		mape = mae / math.Abs(expectedMean)
	}

	if mae > target.EffectiveMAETolerance() || mape > target.EffectiveMAPETolerance() {
		r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusFail, Message: fmt.Sprintf("observed lift %.4f vs expected %.4f (mae=%.4f mape=%.4f)", observedLift, expectedMean, mae, mape)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyBehavioral, Status: StatusPass})
}

func findEffectParams(node *core.NodeDescriptor, columnName, effectTableName string) *core.EffectParams {
	for _, c := range node.Columns {
		if c.Name != columnName {
			continue
		}
		for _, m := range c.Modifiers {
			if m.Kind == core.ModEffect && m.Effect != nil && m.Effect.Table == effectTableName {
				return m.Effect
			}
		}
	}
	return nil
}

func resolveColumns(t *table.Table, names []string) []*table.Column {
	out := make([]*table.Column, len(names))
	for i, n := range names {
		c := t.Column(n)
		if c == nil {
			return nil
		}
		out[i] = c
	}
	return out
}

func rowKeyValidate(cols []*table.Column, row int) string {
	key := ""
	for i, c := range cols {
		if i > 0 {
			key += "\x1f"
		}
		if c.Null[row] {
			continue
		}
		key += fmt.Sprintf("%v", c.At(row))
	}
	return key
}
