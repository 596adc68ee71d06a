package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddressKeyNormalizes(t *testing.T) {
	a := Address{Street: " 100  Main st ", City: "Springfield", Region: "il", Postal: "62701"}
	b := Address{Street: "100 MAIN ST", City: "springfield ", Region: "IL", Postal: "62701"}
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestEmployeeAddress(t *testing.T) {
	e := Employee{Number: "7", Work: Address{Street: "w"}, Home: Address{Street: "h"}}
	assert.Equal(t, "w", e.Address(AddressWork).Street)
	assert.Equal(t, "h", e.Address(AddressHome).Street)
}

func TestWeekStart(t *testing.T) {
	wed := time.Date(2024, 3, 13, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), WeekStart(wed))
	sun := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), WeekStart(sun))
	mon := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), WeekStart(mon))
}

func TestLessEmployeeNumber(t *testing.T) {
	ids := []string{"B7", "10", "A1", "9", "100", "010"}
	sort.SliceStable(ids, func(i, j int) bool { return LessEmployeeNumber(ids[i], ids[j]) })
	assert.Equal(t, []string{"9", "10", "010", "100", "A1", "B7"}, ids)
}
