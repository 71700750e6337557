package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a roll. The numeric order is the
// workflow order; NEW is the zero value and the only initial state.
type Status int

const (
	StatusNew Status = iota
	StatusLoaded
	StatusExposed
	StatusDeveloped
	StatusScanned
)

// NumStatuses is the number of lifecycle stages.
const NumStatuses = 5

var statusNames = [NumStatuses]string{"NEW", "LOADED", "EXPOSED", "DEVELOPED", "SCANNED"}

// Statuses returns every stage in workflow order.
func Statuses() []Status {
	return []Status{StatusNew, StatusLoaded, StatusExposed, StatusDeveloped, StatusScanned}
}

func (s Status) Valid() bool {
	return s >= StatusNew && s <= StatusScanned
}

// Index is the position of s in the workflow, starting at 0.
func (s Status) Index() int {
	return int(s)
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus accepts a stage name in any case.
func ParseStatus(raw string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status by name so the column stays readable.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return statusNames[s], nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
}

// ChemistryType is the process a chemistry batch is mixed for.
type ChemistryType string

const (
	ChemistryC41   ChemistryType = "C41"
	ChemistryE6    ChemistryType = "E6"
	ChemistryBW    ChemistryType = "BW"
	ChemistryECN2  ChemistryType = "ECN2"
	ChemistryOther ChemistryType = "OTHER"
)

var chemistryTypes = map[ChemistryType]struct{}{
	ChemistryC41:   {},
	ChemistryE6:    {},
	ChemistryBW:    {},
	ChemistryECN2:  {},
	ChemistryOther: {},
}

// ParseChemistryType normalises case and rejects unknown processes.
func ParseChemistryType(raw string) (ChemistryType, error) {
	t := ChemistryType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := chemistryTypes[t]; !ok {
		return "", fmt.Errorf("unknown chemistry type %q", raw)
	}
	return t, nil
}

func (t ChemistryType) Valid() bool {
	_, ok := chemistryTypes[t]
	return ok
}
