// Package citekey derives unique citation keys of the form
// Surname + year + letter, disambiguated against sibling records that
// share the year and surname.
package citekey

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidRecordState indicates a record with no author surname
	// to key against.
	ErrInvalidRecordState = errors.New("record has no author surname to key against")

	// ErrKeyExhausted indicates more than 26 same-year same-surname
	// records, past the 'z' disambiguation letter.
	ErrKeyExhausted = errors.New("citation key letters exhausted past 'z'")
)

// Candidate is one persisted record considered during key generation.
// Candidates must arrive ordered by month ascending, then insertion id
// ascending. That order is what makes assigned keys stable; it is
// deliberately not the display order.
type Candidate struct {
	ID      int64
	Surname string
}

// Generate returns surname + year + disambiguation letter.
//
// The scan walks the ordered candidates: reaching the record itself
// (matched by id, so an unpersisted record with selfID 0 never matches)
// ends the scan; every earlier candidate with the same surname advances
// the letter. Candidates are expected to be everything persisted in the
// same year whose authors text contains the surname, which may include
// other surnames that merely contain it as a substring; only exact
// surname matches advance the letter.
func Generate(surname string, year int, siblings []Candidate, selfID int64) (string, error) {
	if surname == "" {
		return "", ErrInvalidRecordState
	}

	letter := 0
	for _, sib := range siblings {
		if selfID != 0 && sib.ID == selfID {
			break
		}
		if sib.Surname == surname {
			letter++
		}
	}
	if letter >= 26 {
		return "", ErrKeyExhausted
	}

	return surname + strconv.Itoa(year) + string(rune('a'+letter)), nil
}
