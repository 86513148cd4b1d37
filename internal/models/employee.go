package models

// Employee is the part of the employee record this service reads and writes.
// The employee lifecycle itself is owned elsewhere; only Employer is mutated here.
type Employee struct {
	ID        string     `json:"id"`
	Self      string     `json:"self"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Owner     string     `json:"owner"`
	Employer  *OfficeRef `json:"employer"` // nil when unassigned
}

// EmployeeRef is the lightweight projection of an employee embedded in an office.
type EmployeeRef struct {
	ID        string `json:"id"`
	Self      string `json:"self"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Ref returns the projection of the employee stored on its office.
func (e *Employee) Ref() EmployeeRef {
	return EmployeeRef{
		ID:        e.ID,
		Self:      e.Self,
		FirstName: e.FirstName,
		LastName:  e.LastName,
	}
}

// Clone returns a deep copy of the employee.
func (e *Employee) Clone() *Employee {
	clone := *e
	if e.Employer != nil {
		employer := *e.Employer
		clone.Employer = &employer
	}
	return &clone
}

// Assigned reports whether the employee currently has an employer.
func (e *Employee) Assigned() bool {
	return e.Employer != nil
}
