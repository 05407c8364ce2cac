package domain

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// MaxLevels is the number of administrative slots in an AdminCode (levels 0–3).
const MaxLevels = 4

// DefaultCodeVersion is the GID code version assumed for country-level files,
// which do not carry one.
const DefaultCodeVersion = "1"

// Slot is one administrative level of an AdminCode. A zero Slot is null.
type Slot struct {
	Code  int64
	Valid bool
}

// Some returns a populated slot.
func Some(code int64) Slot {
	return Slot{Code: code, Valid: true}
}

// Null returns an empty slot.
func Null() Slot {
	return Slot{}
}

func (s Slot) String() string {
	if !s.Valid {
		return "null"
	}
	return strconv.FormatInt(s.Code, 10)
}

// Ptr returns the code as a pointer, nil when the slot is null.
func (s Slot) Ptr() *int64 {
	if !s.Valid {
		return nil
	}
	v := s.Code
	return &v
}

// SlotFromPtr is the inverse of Slot.Ptr.
func SlotFromPtr(p *int64) Slot {
	if p == nil {
		return Null()
	}
	return Some(*p)
}

// compareSlots orders null below every populated code.
func compareSlots(a, b Slot) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	default:
		return cmp.Compare(a.Code, b.Code)
	}
}

// AdminCode identifies the administrative unit a file belongs to.
type AdminCode struct {
	Units       [MaxLevels]Slot
	CodeVersion string
}

// CountryAdminCode returns the admin code shared by all country-level files.
func CountryAdminCode() AdminCode {
	return AdminCode{
		Units:       [MaxLevels]Slot{Some(0)},
		CodeVersion: DefaultCodeVersion,
	}
}

// Depth returns the number of populated slots.
func (c AdminCode) Depth() int {
	n := 0
	for _, s := range c.Units {
		if !s.Valid {
			break
		}
		n++
	}
	return n
}

// Contiguous reports whether populated slots start at level 0 with no gaps.
func (c AdminCode) Contiguous() bool {
	return c.Depth() > 0 && c.Depth() == c.populated()
}

func (c AdminCode) populated() int {
	n := 0
	for _, s := range c.Units {
		if s.Valid {
			n++
		}
	}
	return n
}

// normalize clears the code of null slots so codes can be used as map keys.
func (c AdminCode) normalize() AdminCode {
	for i, s := range c.Units {
		if !s.Valid {
			c.Units[i] = Null()
		}
	}
	return c
}

// Equal reports null-aware equality of the four slots and the code version.
func (c AdminCode) Equal(other AdminCode) bool {
	return c.normalize() == other.normalize()
}

func (c AdminCode) String() string {
	parts := make([]string, MaxLevels)
	for i, s := range c.Units {
		parts[i] = s.String()
	}
	return fmt.Sprintf("{%s} v%s", strings.Join(parts, ", "), c.CodeVersion)
}

// CompareAdminCodes orders codes ascending on the four slots, nulls first,
// then on code version.
func CompareAdminCodes(a, b AdminCode) int {
	for i := range a.Units {
		if c := compareSlots(a.Units[i], b.Units[i]); c != 0 {
			return c
		}
	}
	return compareCodeVersions(a.CodeVersion, b.CodeVersion)
}

// compareCodeVersions compares numerically when both versions are integers,
// so "10" sorts after "2".
func compareCodeVersions(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}
