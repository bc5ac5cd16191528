package enums

import "fmt"

// Department routes an order line item to a preparation station.
type Department string

const (
	DepartmentBar     Department = "bar"
	DepartmentKitchen Department = "kitchen"
	DepartmentHookah  Department = "hookah"
)

var validDepartments = []Department{
	DepartmentBar,
	DepartmentKitchen,
	DepartmentHookah,
}

// IsValid reports whether the value is a known Department.
func (d Department) IsValid() bool {
	for _, candidate := range validDepartments {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDepartment converts raw input into a Department.
func ParseDepartment(value string) (Department, error) {
	for _, candidate := range validDepartments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid department %q", value)
}
