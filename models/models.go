package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SDRID identifies the sales representative a dataset and its blocks belong to.
type SDRID string

// ViewAll is the view filter that shows every SDR.
const ViewAll ViewFilter = "all"

// ViewFilter is either ViewAll or the ID of a single SDR.
type ViewFilter string

// Matches reports whether blocks owned by sdr are visible under the filter.
func (v ViewFilter) Matches(sdr SDRID) bool {
	return v == ViewAll || v == "" || SDRID(v) == sdr
}

// CallRecord is one row of a CRM call-log export.
// Row is the 1-based data row in the source file and is only used for error reporting.
type CallRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Contact   string    `json:"contact,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Note      string    `json:"note,omitempty"`
	Row       int       `json:"-"`
}

// CallBlock is a maximal run of calls by one SDR where consecutive calls
// are no more than the block gap apart.
type CallBlock struct {
	ID       uuid.UUID    `json:"id"`
	SDR      SDRID        `json:"sdr"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Duration float64      `json:"duration"` // minutes
	Calls    int          `json:"calls"`
	Details  []CallRecord `json:"details"`
	Date     string       `json:"date"` // dd/mm label of Start
}

// WeeklyStats holds call totals for one SDR over a work week.
type WeeklyStats struct {
	TotalCalls      int     `json:"total_calls"`
	TotalDuration   float64 `json:"total_duration"`   // minutes
	AverageDuration float64 `json:"average_duration"` // minutes per call
}

// BlockColor is the display band of a block, keyed on its call count.
type BlockColor string

const (
	ColorGreen  BlockColor = "green"
	ColorBlue   BlockColor = "blue"
	ColorYellow BlockColor = "yellow"
	ColorOrange BlockColor = "orange"
	ColorRed    BlockColor = "red"
)

// SDR is a roster entry.
type SDR struct {
	ID    SDRID  `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Roster is the ordered set of SDRs known to a deployment.
type Roster []SDR

// Has reports whether id is part of the roster.
func (r Roster) Has(id SDRID) bool {
	for _, s := range r {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Label returns the display label for id, falling back to the id itself.
func (r Roster) Label(id SDRID) string {
	for _, s := range r {
		if s.ID == id {
			return s.Label
		}
	}
	return string(id)
}

// IDs returns the SDR identifiers in roster order.
func (r Roster) IDs() []SDRID {
	ids := make([]SDRID, len(r))
	for i, s := range r {
		ids[i] = s.ID
	}
	return ids
}

// Order returns ids with roster members first, in roster order, followed by
// any unknown ids sorted by name.
func (r Roster) Order(ids []SDRID) []SDRID {
	present := make(map[SDRID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}

	ordered := make([]SDRID, 0, len(ids))
	for _, s := range r {
		if present[s.ID] {
			ordered = append(ordered, s.ID)
			delete(present, s.ID)
		}
	}

	rest := make([]SDRID, 0, len(present))
	for id := range present {
		rest = append(rest, id)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ordered, rest...)
}
