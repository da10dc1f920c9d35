package metadata

import "fmt"

type Status string

const (
	StatusActive    Status = "active"
	StatusDowned    Status = "downed"
	StatusInTransit Status = "in_transit"
	StatusRetired   Status = "retired"
)

func NewStatus(value string) (Status, error) {
	status := Status(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) isValid() bool {
	switch s {
	case StatusActive, StatusDowned, StatusInTransit, StatusRetired:
		return true
	default:
		return false
	}
}
