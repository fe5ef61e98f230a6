package core

import "fmt"

// validateWeightsKind checks that the numeric parameters accompanying a
// choice generator's weighting mode fall in their valid range (spec §4.3).
func validateWeightsKind(c *ChoiceParams) error {
	switch c.WeightsKind {
	case "", WeightsUniform:
		return nil
	case WeightsExplicit:
		if c.ChoicesRef == "" && len(c.Weights) != len(c.Values) {
			return fmt.Errorf("explicit weighting needs exactly one weight per value (%d values, %d weights)", len(c.Values), len(c.Weights))
		}
		for _, w := range c.Weights {
			if w < 0 {
				return fmt.Errorf("explicit weight %v must be non-negative", w)
			}
		}
		return nil
	case WeightsZipf:
		if c.ZipfAlpha <= 0 {
			return fmt.Errorf("zipf_alpha must be > 0, got %v", c.ZipfAlpha)
		}
		return nil
	case WeightsHeadTail:
		if c.HeadTailH <= 0 || c.HeadTailH >= 1 {
			return fmt.Errorf("head_tail_h must satisfy 0 < h < 1, got %v", c.HeadTailH)
		}
		if c.HeadTailA <= 0 {
			return fmt.Errorf("head_tail_a must be > 0, got %v", c.HeadTailA)
		}
		return nil
	default:
		return fmt.Errorf("unknown weights_kind %q", c.WeightsKind)
	}
}
