package holiday

import "time"

// Holiday is one entry in a holiday calendar, either the public calendar or
// the company-specific one.
type Holiday struct {
	ID          string
	HolidayDate time.Time // date component only
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Kind separates the two calendars sharing one table.
type Kind string

const (
	KindPublic  Kind = "public"
	KindCompany Kind = "company"
)

const dateKey = "2006-01-02"

// DateSet is a date-keyed membership set prepared by the caller so the status
// classifier can do plain O(1) lookups.
type DateSet map[string]struct{}

func NewDateSet(holidays []Holiday) DateSet {
	s := make(DateSet, len(holidays))
	for _, h := range holidays {
		s[h.HolidayDate.Format(dateKey)] = struct{}{}
	}
	return s
}

func (s DateSet) Has(date time.Time) bool {
	_, ok := s[date.Format(dateKey)]
	return ok
}
