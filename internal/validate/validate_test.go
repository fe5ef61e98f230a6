package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func userOrderSpec() *core.Specification {
	return &core.Specification{
		Version:  "1",
		Metadata: core.Metadata{DatasetName: "demo"},
		Nodes: []*core.NodeDescriptor{
			{Name: "user", Kind: core.NodeEntity, PK: "user_id", Columns: []*core.ColumnDescriptor{
				{Name: "user_id", Type: core.TypeInteger},
				{Name: "age", Type: core.TypeInteger},
			}},
			{Name: "order", Kind: core.NodeFact, PK: "order_id", Parents: []string{"user"}, Columns: []*core.ColumnDescriptor{
				{Name: "order_id", Type: core.TypeInteger},
				{Name: "user_id", Type: core.TypeInteger},
				{Name: "amount", Type: core.TypeFloating},
			}},
		},
		Constraints: core.Constraints{
			Unique:      []string{"user.user_id"},
			ForeignKeys: []core.ForeignKey{{Child: "order.user_id", Parent: "user.user_id"}},
			Ranges:      []core.RangeConstraint{{Column: "user.age", Min: 0, Max: 120}},
		},
		Targets: &core.Targets{
			MeanInRange: []core.MeanInRangeTarget{{Column: "order.amount", Min: 50, Max: 150}},
		},
	}
}

func buildUserOrderTables(valid bool) map[string]*table.Table {
	user := table.NewTable("user", "user_id", 3)
	uid := user.AddColumn("user_id", table.KindInt)
	age := user.AddColumn("age", table.KindInt)
	for i, v := range []int64{1, 2, 3} {
		uid.SetInt(i, v)
	}
	for i, v := range []int64{25, 40, 60} {
		age.SetInt(i, v)
	}

	order := table.NewTable("order", "order_id", 2)
	oid := order.AddColumn("order_id", table.KindInt)
	ouid := order.AddColumn("user_id", table.KindInt)
	amount := order.AddColumn("amount", table.KindFloat)
	oid.SetInt(0, 1)
	oid.SetInt(1, 2)
	amount.SetFloat(0, 90)
	amount.SetFloat(1, 110)
	if valid {
		ouid.SetInt(0, 1)
		ouid.SetInt(1, 2)
	} else {
		ouid.SetInt(0, 1)
		ouid.SetInt(1, 99) // no matching user
	}

	return map[string]*table.Table{"user": user, "order": order}
}

func TestValidatePassesOnCleanDataset(t *testing.T) {
	spec := userOrderSpec()
	report := Validate(spec, buildUserOrderTables(true), nil)

	assert.True(t, report.Passed(0))
	assert.GreaterOrEqual(t, report.Summary.QualityScore, 80.0)
	for _, c := range report.Checks {
		assert.Equal(t, StatusPass, c.Status, c.Name)
	}
}

func TestValidateFlagsForeignKeyViolation(t *testing.T) {
	spec := userOrderSpec()
	report := Validate(spec, buildUserOrderTables(false), nil)

	assert.False(t, report.Passed(0))
	found := false
	for _, c := range report.Checks {
		if c.Family == FamilyStructural && c.Status == StatusFail {
			found = true
		}
	}
	assert.True(t, found, "expected a failing structural check")
}

func TestValidateFlagsPrimaryKeyDuplicates(t *testing.T) {
	spec := userOrderSpec()
	tables := buildUserOrderTables(true)
	uid := tables["user"].Column("user_id")
	uid.SetInt(1, 1) // duplicate of row 0

	report := Validate(spec, tables, nil)
	require.False(t, report.Passed(0))
}

func TestValidateRangeConstraintCatchesOutOfBounds(t *testing.T) {
	spec := userOrderSpec()
	tables := buildUserOrderTables(true)
	age := tables["user"].Column("age")
	age.SetInt(2, 200) // outside [0,120]

	report := Validate(spec, tables, nil)
	var failed bool
	for _, c := range report.Checks {
		if c.Name == "range:user.age" && c.Status == StatusFail {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestValidateMeanInRangeFailsOutsideBounds(t *testing.T) {
	spec := userOrderSpec()
	tables := buildUserOrderTables(true)
	amount := tables["order"].Column("amount")
	amount.SetFloat(0, 5)
	amount.SetFloat(1, 6)

	report := Validate(spec, tables, nil)
	var failed bool
	for _, c := range report.Checks {
		if c.Name == "mean_in_range:order.amount" && c.Status == StatusFail {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestValidateWeekendShareWithinTolerance(t *testing.T) {
	spec := &core.Specification{
		Version:  "1",
		Metadata: core.Metadata{DatasetName: "demo"},
		Nodes: []*core.NodeDescriptor{
			{Name: "visit", Kind: core.NodeEntity, PK: "visit_id", Columns: []*core.ColumnDescriptor{
				{Name: "visit_id", Type: core.TypeInteger},
				{Name: "visited_at", Type: core.TypeDatetime},
			}},
		},
		Targets: &core.Targets{
			WeekendShare: &core.WeekendShareTarget{Column: "visit.visited_at", Share: 0.5, Tolerance: 0.1},
		},
	}
	visit := table.NewTable("visit", "visit_id", 4)
	id := visit.AddColumn("visit_id", table.KindInt)
	at := visit.AddColumn("visited_at", table.KindTime)
	// 2024-01-06/07 is Sat/Sun; 2024-01-08/09 is Mon/Tue.
	times := []time.Time{
		time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	for i, tm := range times {
		id.SetInt(i, int64(i))
		at.SetTime(i, tm)
	}

	report := Validate(spec, map[string]*table.Table{"visit": visit}, nil)
	var checked bool
	for _, c := range report.Checks {
		if c.Name == "weekend_share:visit.visited_at" {
			checked = true
			assert.Equal(t, StatusPass, c.Status)
		}
	}
	assert.True(t, checked)
}
