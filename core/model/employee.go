package model

import (
	"strconv"
	"strings"
)

// AddressType tells whether a geocoded location is an employee's work or home
// address.
type AddressType string

const (
	AddressWork AddressType = "WORK"
	AddressHome AddressType = "HOME"
)

// Address is a postal address as listed in the employee roster.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Region string `json:"region"`
	Postal string `json:"postal"`
}

// Key returns a normalized representation used for cache lookups and for
// comparing addresses.
func (a Address) Key() string {
	parts := []string{a.Street, a.City, a.Region, a.Postal}
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToUpper(p)), " ")
	}
	return strings.Join(parts, "|")
}

// IsZero reports whether no address component is set.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street+a.City+a.Region+a.Postal) == ""
}

// Employee is one roster row.
type Employee struct {
	Number string  `json:"employee_number"`
	Work   Address `json:"work"`
	Home   Address `json:"home"`
}

// Address returns the employee address for the given type.
func (e Employee) Address(t AddressType) Address {
	if t == AddressHome {
		return e.Home
	}
	return e.Work
}

// LessEmployeeNumber orders numeric employee numbers numerically and
// everything else lexically after them.
func LessEmployeeNumber(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
