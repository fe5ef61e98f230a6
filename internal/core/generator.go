package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GeneratorKind is the closed enumeration of primitive generator
// identifiers (spec §4.3, §9 "Runtime object lookup registry → closed
// dispatch"). Adding an identifier is a type-system event: a new const
// here, a new param struct, and a new case in GeneratorSpec.UnmarshalJSON
// and in internal/generate's registry.
type GeneratorKind string

const (
	GenSequence       GeneratorKind = "sequence"
	GenChoice         GeneratorKind = "choice"
	GenDistribution   GeneratorKind = "distribution"
	GenDatetimeSeries GeneratorKind = "datetime_series"
	GenFaker          GeneratorKind = "faker"
	GenLookup         GeneratorKind = "lookup"
	GenExpression     GeneratorKind = "expression"
	GenEnumList       GeneratorKind = "enum_list"
)

// KnownGeneratorKinds lists every identifier the primitive library
// recognizes; preflight rejects anything else (spec §3.2 invariant 1).
var KnownGeneratorKinds = []GeneratorKind{
	GenSequence, GenChoice, GenDistribution, GenDatetimeSeries,
	GenFaker, GenLookup, GenExpression, GenEnumList,
}

// GeneratorSpec is the tagged union of generator parameter blocks (spec
// §3.1 "Generator specification"). Exactly one of the embedded param
// pointers is non-nil, selected by Kind.
type GeneratorSpec struct {
	Kind GeneratorKind

	Sequence       *SequenceParams
	Choice         *ChoiceParams
	Distribution   *DistributionParams
	DatetimeSeries *DatetimeSeriesParams
	Faker          *FakerParams
	Lookup         *LookupParams
	Expression     *ExpressionParams
	EnumList       *EnumListParams
}

// SequenceParams backs the "sequence" generator: consecutive integers.
type SequenceParams struct {
	Start int64 `json:"start"`
	Step  int64 `json:"step"`
}

// ChoiceWeightsKind names one of the supported weighting modes (spec §4.3).
type ChoiceWeightsKind string

const (
	WeightsUniform  ChoiceWeightsKind = "uniform"
	WeightsExplicit ChoiceWeightsKind = "explicit"
	WeightsZipf     ChoiceWeightsKind = "zipf"
	WeightsHeadTail ChoiceWeightsKind = "head_tail"
)

// ChoiceParams backs the "choice" generator: sample from an inline list or
// a `choices_ref` reference, per one of four weighting modes.
type ChoiceParams struct {
	Values      []string          `json:"values,omitempty"`
	ChoicesRef  string            `json:"choices_ref,omitempty"` // "table.column"
	WeightsKind ChoiceWeightsKind `json:"weights_kind,omitempty"`
	Weights     []float64         `json:"weights,omitempty"` // WeightsExplicit
	ZipfAlpha   float64           `json:"zipf_alpha,omitempty"`
	HeadTailH   float64           `json:"head_tail_h,omitempty"`
	HeadTailA   float64           `json:"head_tail_a,omitempty"`
}

// DistributionName enumerates the supported numeric distributions.
type DistributionName string

const (
	DistNormal    DistributionName = "normal"
	DistLognormal DistributionName = "lognormal"
	DistUniform   DistributionName = "uniform"
	DistPoisson   DistributionName = "poisson"
)

// DistributionParams backs the "distribution" generator. Clamp is
// mandatory (spec §4.3): out-of-range draws are truncated to the bound,
// never discarded.
type DistributionParams struct {
	Name  DistributionName `json:"name"`
	Mean  float64          `json:"mean,omitempty"`
	Std   float64          `json:"std,omitempty"`
	Sigma float64          `json:"sigma,omitempty"`
	Low   float64          `json:"low,omitempty"`
	High  float64          `json:"high,omitempty"`
	Lambda float64         `json:"lambda,omitempty"`

	Clamp [2]float64 `json:"clamp"`
}

// PatternDimension names the axis a datetime_series bias pattern weighs.
type PatternDimension string

const (
	PatternHour  PatternDimension = "hour"
	PatternDOW   PatternDimension = "dow"
	PatternMonth PatternDimension = "month"
)

// DatetimePattern biases datetime_series sampling by hour/dow/month.
type DatetimePattern struct {
	Dimension PatternDimension `json:"dimension"`
	Weights   []float64        `json:"weights"` // len 24|7|12
}

// DatetimeSeriesParams backs the "datetime_series" generator. Within is
// either the literal string "timeframe" (inherit Specification.Timeframe)
// or an explicit {start,end} pair is carried by the caller's node config;
// for this engine Within is always "timeframe" unless overridden by
// Start/End.
type DatetimeSeriesParams struct {
	Within  string           `json:"within"`
	Start   *jsonTime        `json:"start,omitempty"`
	End     *jsonTime        `json:"end,omitempty"`
	Pattern *DatetimePattern `json:"pattern,omitempty"`
}

// FakerParams backs the "faker" generator: semantic strings by method name.
type FakerParams struct {
	Method     string `json:"method"` // name, email, address, company, word, phone_number, ...
	Locale     string `json:"locale,omitempty"`
	LocaleFrom string `json:"locale_from,omitempty"` // column name carrying an ISO country code
}

// LookupParams backs the "lookup" generator: copy values from table.column.
type LookupParams struct {
	From string `json:"from"`
}

// ExpressionParams backs the "expression" generator: a safe arithmetic
// expression over already-computed columns of the current row (spec §4.3,
// §9 "Safe expressions").
type ExpressionParams struct {
	Expr string `json:"expr"`
}

// EnumListParams backs the "enum_list" generator: literal values in order.
type EnumListParams struct {
	Values []string `json:"values"`
}

// rawGenerator is the wire shape shared by every generator kind: a "kind"
// discriminator plus kind-specific fields flattened alongside it.
type rawGenerator struct {
	Kind GeneratorKind `json:"kind"`
}

// UnmarshalJSON decodes the tagged union, rejecting any kind not in
// KnownGeneratorKinds (spec §3.2 invariant 1) and any field not valid for
// the selected kind (spec §6.1 "rejects any unknown field").
func (g *GeneratorSpec) UnmarshalJSON(data []byte) error {
	var tag rawGenerator
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	g.Kind = tag.Kind
	switch tag.Kind {
	case GenSequence:
		g.Sequence = &SequenceParams{}
		return strictUnmarshal(data, g.Sequence)
	case GenChoice:
		g.Choice = &ChoiceParams{}
		return strictUnmarshal(data, g.Choice)
	case GenDistribution:
		g.Distribution = &DistributionParams{}
		if err := strictUnmarshal(data, g.Distribution); err != nil {
			return err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("generator: %w", err)
		}
		if _, ok := fields["clamp"]; !ok {
			return invalidf("generator", string(tag.Kind), "clamp", "distribution generator requires clamp [lo, hi]")
		}
		return nil
	case GenDatetimeSeries:
		g.DatetimeSeries = &DatetimeSeriesParams{}
		return strictUnmarshal(data, g.DatetimeSeries)
	case GenFaker:
		g.Faker = &FakerParams{}
		return strictUnmarshal(data, g.Faker)
	case GenLookup:
		g.Lookup = &LookupParams{}
		return strictUnmarshal(data, g.Lookup)
	case GenExpression:
		g.Expression = &ExpressionParams{}
		return strictUnmarshal(data, g.Expression)
	case GenEnumList:
		g.EnumList = &EnumListParams{}
		return strictUnmarshal(data, g.EnumList)
	default:
		return invalidf("generator", string(tag.Kind), "kind", "unknown generator kind %q; known kinds: %v", tag.Kind, KnownGeneratorKinds)
	}
}

// MarshalJSON re-flattens the active param block alongside its kind tag,
// the inverse of UnmarshalJSON, so a decoded GeneratorSpec can be
// re-encoded in its wire form.
func (g GeneratorSpec) MarshalJSON() ([]byte, error) {
	var payload any
	switch g.Kind {
	case GenSequence:
		payload = g.Sequence
	case GenChoice:
		payload = g.Choice
	case GenDistribution:
		payload = g.Distribution
	case GenDatetimeSeries:
		payload = g.DatetimeSeries
	case GenFaker:
		payload = g.Faker
	case GenLookup:
		payload = g.Lookup
	case GenExpression:
		payload = g.Expression
	case GenEnumList:
		payload = g.EnumList
	default:
		payload = struct{}{}
	}
	return remarshalWithKind(string(g.Kind), payload)
}

// strictUnmarshal decodes data into v, rejecting unknown JSON fields. The
// "kind" discriminator (present on every tagged-union wire object but not
// on any individual param struct) is stripped first so it never counts as
// an unknown field.
func strictUnmarshal(data []byte, v any) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	delete(m, "kind")
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// remarshalWithKind marshals payload and splices a "kind" field into the
// resulting object.
func remarshalWithKind(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	kindRaw, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	m["kind"] = kindRaw
	return json.Marshal(m)
}
