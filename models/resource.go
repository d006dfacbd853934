package models

import "fmt"

// ResourceKind identifies which table a resource reference points at.
type ResourceKind string

const (
	ResourceBusiness ResourceKind = "business"
	ResourceEmployee ResourceKind = "employee"
)

// ResourceRef identifies a bookable resource: a business as a whole or a
// single employee. Rules and appointments are keyed by it.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   uint         `json:"id"`
}

func BusinessRef(id uint) ResourceRef {
	return ResourceRef{Kind: ResourceBusiness, ID: id}
}

func EmployeeRef(id uint) ResourceRef {
	return ResourceRef{Kind: ResourceEmployee, ID: id}
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

func (r ResourceRef) Valid() bool {
	return (r.Kind == ResourceBusiness || r.Kind == ResourceEmployee) && r.ID != 0
}
