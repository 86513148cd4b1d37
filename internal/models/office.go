package models

// Office is an office record owned by a single principal.
// Employees holds lightweight projections of the employees assigned to the office;
// the matching Employee records point back through their Employer field.
type Office struct {
	ID             string        `json:"id"`
	Company        string        `json:"company"`
	City           string        `json:"city"`
	State          string        `json:"state"`
	GeneralManager string        `json:"general_manager"`
	PhoneNumber    string        `json:"phone_number"`
	Owner          string        `json:"owner,omitempty"` // empty for legacy records
	Employees      []EmployeeRef `json:"employees"`
	Self           string        `json:"self"`
}

// OfficeRef is the lightweight projection of an office embedded in an employee.
type OfficeRef struct {
	ID      string `json:"id"`
	Self    string `json:"self"`
	Company string `json:"company"`
}

// Ref returns the projection of the office stored on assigned employees.
func (o *Office) Ref() *OfficeRef {
	return &OfficeRef{
		ID:      o.ID,
		Self:    o.Self,
		Company: o.Company,
	}
}

// Clone returns a deep copy of the office.
func (o *Office) Clone() *Office {
	clone := *o
	clone.Employees = make([]EmployeeRef, len(o.Employees))
	copy(clone.Employees, o.Employees)
	return &clone
}

// IndexOfEmployee returns the position of the employee in the office's
// employees sequence, or -1 when it is not present.
func (o *Office) IndexOfEmployee(employeeID string) int {
	for i, ref := range o.Employees {
		if ref.ID == employeeID {
			return i
		}
	}
	return -1
}
