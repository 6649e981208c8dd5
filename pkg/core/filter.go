package core

import "time"

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Filter is the record predicate applied before bucketing: a record passes
// only if it matches every non-empty field, case-sensitive exact match.
type Filter struct {
	Account   string
	Partition string
	State     string
	User      string
}

func (f Filter) Match(r *NormalizedRecord) bool {
	if f.Account != "" && r.Account != f.Account {
		return false
	}
	if f.Partition != "" && r.Partition != f.Partition {
		return false
	}
	if f.State != "" && r.State != f.State {
		return false
	}
	if f.User != "" && r.User != f.User {
		return false
	}
	return true
}
