package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestColumnSetAndAt(t *testing.T) {
	c := NewColumn("amount", KindFloat, 3)
	assert.Nil(t, c.At(0))

	c.SetFloat(0, 1.5)
	assert.Equal(t, 1.5, c.At(0))
	assert.Nil(t, c.At(1))
}

func TestTableAddColumnTracksByName(t *testing.T) {
	tbl := NewTable("orders", "id", 2)
	ids := tbl.AddColumn("id", KindInt)
	ids.SetInt(0, 1)
	ids.SetInt(1, 2)

	got := tbl.Column("id")
	assert.Equal(t, ids, got)
	assert.Equal(t, int64(1), got.At(0))
	assert.Nil(t, tbl.Column("missing"))
}

func TestColumnTimeKind(t *testing.T) {
	c := NewColumn("created_at", KindTime, 1)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.SetTime(0, now)
	assert.Equal(t, now, c.At(0))
}

func TestColumnCastToIntRoundsAndConvertsKind(t *testing.T) {
	c := NewColumn("age", KindFloat, 3)
	c.SetFloat(0, 35.4)
	c.SetFloat(1, 35.6)
	// row 2 left NULL

	c.CastToInt()

	assert.Equal(t, KindInt, c.Kind)
	assert.Nil(t, c.Floats)
	assert.Equal(t, int64(35), c.Ints[0])
	assert.Equal(t, int64(36), c.Ints[1])
	assert.True(t, c.Null[2])
}

func TestColumnCastToIntIsNoOpOnInt(t *testing.T) {
	c := NewColumn("id", KindInt, 1)
	c.SetInt(0, 7)
	c.CastToInt()
	assert.Equal(t, KindInt, c.Kind)
	assert.Equal(t, int64(7), c.Ints[0])
}
