package enums

import "fmt"

// LineItemType distinguishes stock-consuming parts from labor services.
type LineItemType string

const (
	LineItemTypePart    LineItemType = "part"
	LineItemTypeService LineItemType = "service"
)

var validLineItemTypes = []LineItemType{
	LineItemTypePart,
	LineItemTypeService,
}

// String implements fmt.Stringer.
func (l LineItemType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemType.
func (l LineItemType) IsValid() bool {
	for _, candidate := range validLineItemTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ConsumesStock reports whether items of this type decrement inventory.
func (l LineItemType) ConsumesStock() bool {
	return l == LineItemTypePart
}

// ParseLineItemType converts raw input into a LineItemType.
func ParseLineItemType(value string) (LineItemType, error) {
	for _, candidate := range validLineItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item type %q", value)
}
