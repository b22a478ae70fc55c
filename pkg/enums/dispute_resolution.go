package enums

import "fmt"

// DisputeResolution records the outcome an admin chose for a disputed booking.
type DisputeResolution string

const (
	DisputeResolutionReleased DisputeResolution = "released"
	DisputeResolutionRefunded DisputeResolution = "refunded"
)

var validDisputeResolutions = []DisputeResolution{
	DisputeResolutionReleased,
	DisputeResolutionRefunded,
}

// String implements fmt.Stringer.
func (d DisputeResolution) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisputeResolution.
func (d DisputeResolution) IsValid() bool {
	for _, candidate := range validDisputeResolutions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeResolution converts raw input into a DisputeResolution.
func ParseDisputeResolution(value string) (DisputeResolution, error) {
	for _, candidate := range validDisputeResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute resolution %q", value)
}
