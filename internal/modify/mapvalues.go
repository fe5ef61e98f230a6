package modify

import (
	"fmt"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModMapValues, modifyMapValues)
}

func modifyMapValues(ctx *Context) error {
	p := ctx.Modifier.MapValues
	c := ctx.Target
	if c.Kind != table.KindString {
		return fmt.Errorf("modify: map_values on non-string column %q", c.Name)
	}
	for i := 0; i < c.Len(); i++ {
		if c.Null[i] {
			continue
		}
		if mapped, ok := p.Mapping[c.Strings[i]]; ok {
			c.Strings[i] = mapped
		}
	}
	return nil
}
