package generate

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"

	"synthgen/internal/core"
	"synthgen/internal/locale"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenFaker, generateFaker)
}

// generateFaker produces semantically-typed strings (names, emails,
// addresses, ...) via gofakeit, seeded per column from ctx.Rand so the
// column's values are reproducible independent of faker's own global state
// (spec §4.1 "never reuses an RNG across columns" — each column gets its
// own *gofakeit.Faker instance, never the package-level default).
func generateFaker(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Faker
	col := table.NewColumn(ctx.Column.Name, table.KindString, ctx.Rows)

	if p.LocaleFrom == "" {
		f := gofakeit.NewFaker(rand.NewSource(ctx.Rand.Int63()), false)
		for i := 0; i < ctx.Rows; i++ {
			v, err := fakerMethod(f, p.Method)
			if err != nil {
				return nil, err
			}
			col.SetString(i, v)
		}
		return col, nil
	}

	src := ctx.SelfTable()
	if src == nil {
		return nil, fmt.Errorf("faker: locale_from column %q not yet materialized", p.LocaleFrom)
	}
	localeCol := src.Column(p.LocaleFrom)
	if localeCol == nil {
		return nil, fmt.Errorf("faker: locale_from column %q does not exist", p.LocaleFrom)
	}

	faked := make(map[string]*gofakeit.Faker)
	for i := 0; i < ctx.Rows; i++ {
		countryCode := fmt.Sprint(localeCol.At(i))
		tag := locale.Resolve(countryCode)
		f, ok := faked[tag]
		if !ok {
			f = gofakeit.NewFaker(rand.NewSource(ctx.Rand.Int63()), false)
			faked[tag] = f
		}
		v, err := fakerMethod(f, p.Method)
		if err != nil {
			return nil, err
		}
		col.SetString(i, v)
	}
	return col, nil
}

// fakerMethod dispatches the declared method name to the corresponding
// gofakeit.Faker call. The set is closed and intentionally limited to the
// methods a synthetic dataset typically needs.
func fakerMethod(f *gofakeit.Faker, method string) (string, error) {
	switch method {
	case "name":
		return f.Name(), nil
	case "first_name":
		return f.FirstName(), nil
	case "last_name":
		return f.LastName(), nil
	case "email":
		return f.Email(), nil
	case "phone_number":
		return f.Phone(), nil
	case "address":
		return f.Address().Address, nil
	case "city":
		return f.City(), nil
	case "street":
		return f.Street(), nil
	case "company":
		return f.Company(), nil
	case "job_title":
		return f.JobTitle(), nil
	case "word":
		return f.Word(), nil
	case "sentence":
		return f.Sentence(8), nil
	case "username":
		return f.Username(), nil
	case "uuid":
		return f.UUID(), nil
	case "url":
		return f.URL(), nil
	case "currency_short":
		return f.CurrencyShort(), nil
	case "credit_card_number":
		return f.CreditCardNumber(nil), nil
	default:
		return "", fmt.Errorf("faker: unknown method %q", method)
	}
}
