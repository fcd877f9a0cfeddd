package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"tradesync/internal/journal"
	"tradesync/internal/report"
)

// listQuery is the parsed query string of the list and export endpoints.
type listQuery struct {
	filter report.Filter
	sort   report.Sort
	page   report.Page
}

func (h *APIHandler) parseListQuery(q url.Values) (listQuery, error) {
	var lq listQuery
	f := report.Filter{
		Account:    q.Get("account"),
		Instrument: q.Get("instrument"),
		Strategy:   q.Get("strategy"),
		Emotion:    q.Get("emotion"),
		Search:     q.Get("search"),
		Now:        h.now,
	}
	if d := q.Get("direction"); d != "" {
		f.Direction = journal.ParseDirection(d)
		if !f.Direction.Valid() {
			return lq, fmt.Errorf("unknown direction %q", d)
		}
	}

	quick, ok := report.ParseQuick(q.Get("quick"))
	if !ok {
		return lq, fmt.Errorf("unknown quick filter %q", q.Get("quick"))
	}
	f.Quick = quick

	var err error
	if f.DateFrom, err = dateParam(q, "date_from"); err != nil {
		return lq, err
	}
	if f.DateTo, err = dateParam(q, "date_to"); err != nil {
		return lq, err
	}
	for name, dst := range map[string]**float64{
		"min_pnl": &f.MinPnL,
		"max_pnl": &f.MaxPnL,
		"min_r":   &f.MinR,
		"max_r":   &f.MaxR,
	} {
		if *dst, err = floatParam(q, name); err != nil {
			return lq, err
		}
	}
	lq.filter = f

	field := q.Get("sort")
	if !report.ValidSortField(field) {
		return lq, fmt.Errorf("unknown sort field %q", field)
	}
	lq.sort = report.Sort{Field: field}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		lq.sort.Desc = true
	default:
		return lq, fmt.Errorf("order must be asc or desc")
	}

	if lq.page.Index, err = intParam(q, "page", 1); err != nil {
		return lq, err
	}
	if lq.page.Size, err = intParam(q, "page_size", h.pageSize); err != nil {
		return lq, err
	}
	return lq, nil
}

func dateParam(q url.Values, name string) (time.Time, error) {
	s := q.Get(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(journal.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date like 2006-01-02", name)
	}
	return t, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a finite number", name)
	}
	return &v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
