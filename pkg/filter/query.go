package filter

import (
	"net/url"
	"strconv"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
)

// Query parameter names.
const (
	ParamCompany  = "company"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamYear     = "year"
	ParamLocation = "location"
	ParamSalesRep = "rep"
)

// ParseQuery reads filter state and sort mode from URL query parameters.
// Missing parameters keep their defaults; url.Values has already decoded
// percent-escapes.
func ParseQuery(q url.Values) (State, SortMode, error) {
	s := Default()
	if c := q.Get(ParamCategory); c != "" {
		s.Category = c
	}
	s.Company = q.Get(ParamCompany)
	s.Location = q.Get(ParamLocation)
	s.SalesRep = q.Get(ParamSalesRep)
	if y := q.Get(ParamYear); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return s, Newest, rwerrors.Wrap(rwerrors.ErrCodeInvalidFilter, err, "invalid year %q", y)
		}
		s.Year = year
	}
	if err := s.Validate(); err != nil {
		return s, Newest, err
	}

	mode, err := ParseSortMode(q.Get(ParamSort))
	if err != nil {
		return s, Newest, err
	}
	return s, mode, nil
}

// Query encodes non-default state and sort mode as query parameters.
func (s State) Query(mode SortMode) url.Values {
	q := url.Values{}
	if c := s.CategoryOrAll(); c != CategoryAll {
		q.Set(ParamCategory, c)
	}
	if s.Company != "" {
		q.Set(ParamCompany, s.Company)
	}
	if s.Year != 0 {
		q.Set(ParamYear, strconv.Itoa(s.Year))
	}
	if s.Location != "" {
		q.Set(ParamLocation, s.Location)
	}
	if s.SalesRep != "" {
		q.Set(ParamSalesRep, s.SalesRep)
	}
	if mode != "" && mode != Newest {
		q.Set(ParamSort, string(mode))
	}
	return q
}

// WithCompany returns a copy of u with the company parameter set, or removed
// when company is empty. Other parameters are preserved.
func WithCompany(u *url.URL, company string) *url.URL {
	out := *u
	q := out.Query()
	if company == "" {
		q.Del(ParamCompany)
	} else {
		q.Set(ParamCompany, company)
	}
	out.RawQuery = q.Encode()
	return &out
}
