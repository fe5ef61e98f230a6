package core

import (
	"encoding/json"
	"fmt"
)

// ModifierKind is the closed enumeration of modifier identifiers (spec
// §4.4, §9 "closed dispatch"). Applied in declaration order after the
// generator, before clamp/cast (spec §4.4 header).
type ModifierKind string

const (
	ModMultiply    ModifierKind = "multiply"
	ModAdd         ModifierKind = "add"
	ModClamp       ModifierKind = "clamp"
	ModJitter      ModifierKind = "jitter"
	ModTimeJitter  ModifierKind = "time_jitter"
	ModMapValues   ModifierKind = "map_values"
	ModSeasonality ModifierKind = "seasonality"
	ModOutliers    ModifierKind = "outliers"
	ModEffect      ModifierKind = "effect"
	ModTrend       ModifierKind = "trend"
)

// KnownModifierKinds lists every identifier the modifier library
// recognizes; preflight rejects anything else.
var KnownModifierKinds = []ModifierKind{
	ModMultiply, ModAdd, ModClamp, ModJitter, ModTimeJitter,
	ModMapValues, ModSeasonality, ModOutliers, ModEffect, ModTrend,
}

// ModifierSpec is the tagged union of modifier parameter blocks (spec §3.1
// "Modifier specification").
type ModifierSpec struct {
	Kind ModifierKind

	Multiply    *MultiplyParams
	Add         *AddParams
	Clamp       *ClampParams
	Jitter      *JitterParams
	TimeJitter  *TimeJitterParams
	MapValues   *MapValuesParams
	Seasonality *SeasonalityParams
	Outliers    *OutliersParams
	Effect      *EffectParams
	Trend       *TrendParams
}

// MultiplyParams scales a numeric column by a constant factor.
type MultiplyParams struct {
	Factor float64 `json:"factor"`
}

// AddParams offsets a numeric column by a constant.
type AddParams struct {
	Offset float64 `json:"offset"`
}

// ClampParams clips a numeric column to [Min,Max].
type ClampParams struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// JitterParams adds/multiplies independent noise drawn from a distribution.
type JitterParams struct {
	Mode         string           `json:"mode"` // "add" or "multiply"
	Distribution DistributionName `json:"distribution"`
	Mean         float64          `json:"mean,omitempty"`
	Std          float64          `json:"std,omitempty"`
}

// TimeJitterParams adds gaussian noise (in seconds) to a datetime column.
type TimeJitterParams struct {
	StdSeconds float64 `json:"std_seconds"`
}

// MapValuesParams remaps categorical values by dictionary.
type MapValuesParams struct {
	Mapping map[string]string `json:"mapping"`
}

// SeasonalityParams multiplies by a weight chosen from hour/dow/month of a
// sibling timestamp column, normalized to mean 1 (spec §4.4).
type SeasonalityParams struct {
	TimestampColumn string           `json:"timestamp_column"`
	Dimension       PatternDimension `json:"dimension"`
	Weights         []float64        `json:"weights"`
}

// OutliersParams replaces values with a spike/drop at a given rate.
type OutliersParams struct {
	Rate            float64          `json:"rate"`
	MagnitudeDist   DistributionName `json:"magnitude_dist"`
	MagnitudeMean   float64          `json:"magnitude_mean,omitempty"`
	MagnitudeStd    float64          `json:"magnitude_std,omitempty"`
}

// EffectOp selects whether an effect table's value is applied as a
// multiplier or an additive delta.
type EffectOp string

const (
	EffectMul EffectOp = "mul"
	EffectAdd EffectOp = "add"
)

// EffectScope selects whether an effect applies to a column's values
// (column) or to a table as a whole (table). Only column scope changes
// data: the effect modifier leaves the column unchanged for table scope and
// no part of the executor scales fanout counts by it; table scope only adds
// a planning dependency on the effect table (internal/plan).
type EffectScope string

const (
	EffectScopeColumn EffectScope = "column"
	EffectScopeTable  EffectScope = "table"
)

// EffectParams joins the owning column's row against an effect table on
// key columns and a time window.
type EffectParams struct {
	Table           string      `json:"table"`
	KeyColumns      []string    `json:"key_columns"`
	TimeColumn      string      `json:"time_column"`
	EffectWindowCol string      `json:"effect_window_col"` // effect table column naming the window duration (days)
	MultiplierCol   string      `json:"multiplier_col,omitempty"`
	DeltaCol        string      `json:"delta_col,omitempty"`
	Op              EffectOp    `json:"op"`
	Scope           EffectScope `json:"scope"`
}

// TrendShape names the functional form of a trend modifier.
type TrendShape string

const (
	TrendExponential  TrendShape = "exponential"
	TrendLinear       TrendShape = "linear"
	TrendLogarithmic  TrendShape = "logarithmic"
)

// TrendParams multiplies by a growth factor computed from a reference
// timestamp column, baselined at Specification.Timeframe.Start (spec §4.4).
type TrendParams struct {
	Shape           TrendShape `json:"shape"`
	GrowthRate      float64    `json:"growth_rate"` // r (exponential/linear); negative denotes decay
	A               float64    `json:"a,omitempty"` // logarithmic intercept
	B               float64    `json:"b,omitempty"` // logarithmic slope
	ReferenceColumn string     `json:"reference_column"`
	Unit            string     `json:"unit,omitempty"` // time unit for t; default "year"
}

type rawModifier struct {
	Kind ModifierKind `json:"kind"`
}

// UnmarshalJSON decodes the tagged union, rejecting unknown kinds and any
// field not valid for the selected kind.
func (m *ModifierSpec) UnmarshalJSON(data []byte) error {
	var tag rawModifier
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("modifier: %w", err)
	}

	m.Kind = tag.Kind
	switch tag.Kind {
	case ModMultiply:
		m.Multiply = &MultiplyParams{}
		return strictUnmarshal(data, m.Multiply)
	case ModAdd:
		m.Add = &AddParams{}
		return strictUnmarshal(data, m.Add)
	case ModClamp:
		m.Clamp = &ClampParams{}
		return strictUnmarshal(data, m.Clamp)
	case ModJitter:
		m.Jitter = &JitterParams{}
		return strictUnmarshal(data, m.Jitter)
	case ModTimeJitter:
		m.TimeJitter = &TimeJitterParams{}
		return strictUnmarshal(data, m.TimeJitter)
	case ModMapValues:
		m.MapValues = &MapValuesParams{}
		return strictUnmarshal(data, m.MapValues)
	case ModSeasonality:
		m.Seasonality = &SeasonalityParams{}
		return strictUnmarshal(data, m.Seasonality)
	case ModOutliers:
		m.Outliers = &OutliersParams{}
		return strictUnmarshal(data, m.Outliers)
	case ModEffect:
		m.Effect = &EffectParams{}
		return strictUnmarshal(data, m.Effect)
	case ModTrend:
		m.Trend = &TrendParams{}
		return strictUnmarshal(data, m.Trend)
	default:
		return invalidf("modifier", string(tag.Kind), "kind", "unknown modifier kind %q; known kinds: %v", tag.Kind, KnownModifierKinds)
	}
}

// AppliesToType reports whether this modifier kind may legally decorate a
// column of the given logical type (spec §3.2 invariant 5).
func (k ModifierKind) AppliesToType(t LogicalType) bool {
	switch k {
	case ModMultiply, ModAdd, ModClamp, ModJitter, ModSeasonality, ModOutliers, ModTrend:
		return t == TypeInteger || t == TypeFloating
	case ModTimeJitter:
		return t == TypeDatetime || t == TypeDate
	case ModMapValues:
		return t == TypeString
	case ModEffect:
		return t == TypeInteger || t == TypeFloating
	default:
		return false
	}
}
