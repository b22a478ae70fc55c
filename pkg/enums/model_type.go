package enums

import "fmt"

// ModelType classifies a model's partnership tier, which drives referral rates.
type ModelType string

const (
	ModelTypeNormal  ModelType = "normal"
	ModelTypeSpecial ModelType = "special"
	ModelTypePartner ModelType = "partner"
)

var validModelTypes = []ModelType{
	ModelTypeNormal,
	ModelTypeSpecial,
	ModelTypePartner,
}

// String implements fmt.Stringer.
func (m ModelType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known ModelType.
func (m ModelType) IsValid() bool {
	for _, candidate := range validModelTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseModelType converts raw input into a ModelType.
func ParseModelType(value string) (ModelType, error) {
	for _, candidate := range validModelTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid model type %q", value)
}
