package enums

import "fmt"

// ProductUnit maps to the product_unit enum in Postgres.
type ProductUnit string

const (
	ProductUnitKilogram ProductUnit = "KG"
	ProductUnitPound    ProductUnit = "LB"
	ProductUnitPiece    ProductUnit = "PIECE"
	ProductUnitBox      ProductUnit = "BOX"
	ProductUnitLiter    ProductUnit = "LITER"
	ProductUnitDozen    ProductUnit = "DOZEN"
)

var validProductUnits = []ProductUnit{
	ProductUnitKilogram,
	ProductUnitPound,
	ProductUnitPiece,
	ProductUnitBox,
	ProductUnitLiter,
	ProductUnitDozen,
}

// IsValid checks whether the given unit matches the canonical enum.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw strings into ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
