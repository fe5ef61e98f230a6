package validate

import (
	"go.uber.org/zap"

	"synthgen/internal/core"
	"synthgen/internal/table"
	"synthgen/internal/telemetry"
)

// Validate runs every structural, value, and behavioral check the
// specification declares against an already-materialized dataset and
// returns the scored Report. logger is nil-safe: a nil value is treated
// as telemetry.Nop().
func Validate(spec *core.Specification, tables map[string]*table.Table, logger *zap.Logger) *Report {
	log := telemetry.Or(logger)
	r := &Report{RowCounts: make(map[string]int, len(tables))}
	for name, t := range tables {
		r.RowCounts[name] = t.Rows
	}

	r.runStructural(spec, tables)
	r.runValue(spec, tables)
	r.runBehavioral(spec, tables, log)

	r.finalize()
	return r
}
