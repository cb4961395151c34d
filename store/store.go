// Package store holds the per-SDR call blocks of a session together with the
// current week, view filter and block selection.
package store

import (
	"call-blocks/calendar"
	"call-blocks/errors"
	"call-blocks/metrics"
	"call-blocks/models"
	"call-blocks/parser"
	"call-blocks/segmenter"
	"call-blocks/stats"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the in-memory dataset of one session.
// Imports and deletes replace a whole SDR collection at once, so readers never
// observe a partially imported dataset.
type Store struct {
	mu       sync.RWMutex
	roster   models.Roster
	columns  parser.Columns
	location *time.Location
	logger   zerolog.Logger

	data     map[models.SDRID][]models.CallBlock
	week     time.Time
	view     models.ViewFilter
	selected *models.CallBlock
}

// New creates an empty store. The current week is the one containing now in loc.
func New(roster models.Roster, columns parser.Columns, loc *time.Location, logger zerolog.Logger) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		roster:   roster,
		columns:  columns,
		location: loc,
		logger:   logger.With().Str("component", "store").Logger(),
		data:     make(map[models.SDRID][]models.CallBlock),
		week:     stats.WeekStart(time.Now().In(loc)),
		view:     models.ViewAll,
	}
}

// Roster returns the SDRs known to the store.
func (s *Store) Roster() models.Roster {
	return s.roster
}

// Location returns the location used for timestamps and calendar days.
func (s *Store) Location() *time.Location {
	return s.location
}

// Import reads a CSV export and replaces the blocks of sdr with its segmentation.
func (s *Store) Import(sdr models.SDRID, r io.Reader) ([]models.CallBlock, error) {
	if !s.roster.Has(sdr) {
		metrics.RecordImport(string(sdr), 0, errors.ErrUnknownSDR)
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSDR, sdr)
	}

	rows, err := parser.ReadRows(r)
	if err != nil {
		s.logger.Error().Err(err).Str("sdr", string(sdr)).Msg("import failed")
		metrics.RecordImport(string(sdr), 0, err)
		return nil, err
	}
	return s.ImportRows(sdr, rows)
}

// ImportRows converts already tokenised rows and replaces the blocks of sdr.
// On error the previously stored blocks are kept.
func (s *Store) ImportRows(sdr models.SDRID, rows []parser.Row) ([]models.CallBlock, error) {
	if !s.roster.Has(sdr) {
		metrics.RecordImport(string(sdr), 0, errors.ErrUnknownSDR)
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSDR, sdr)
	}

	records, err := parser.Records(rows, s.columns, s.location)
	if err != nil {
		s.logger.Error().Err(err).Str("sdr", string(sdr)).Int("rows", len(rows)).Msg("import failed")
		metrics.RecordImport(string(sdr), 0, err)
		return nil, err
	}
	return s.ImportRecords(sdr, records)
}

// ImportRecords segments records and replaces the blocks of sdr.
// Timestamps are moved into the store location so labels match the calendar.
func (s *Store) ImportRecords(sdr models.SDRID, records []models.CallRecord) ([]models.CallBlock, error) {
	if !s.roster.Has(sdr) {
		metrics.RecordImport(string(sdr), 0, errors.ErrUnknownSDR)
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSDR, sdr)
	}

	local := make([]models.CallRecord, len(records))
	for i, rec := range records {
		rec.Timestamp = rec.Timestamp.In(s.location)
		local[i] = rec
	}
	blocks := segmenter.Segment(local, sdr)

	s.mu.Lock()
	s.data[sdr] = cloneBlocks(blocks)
	if s.selected != nil && s.selected.SDR == sdr {
		s.selected = nil
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("sdr", string(sdr)).
		Int("records", len(records)).
		Int("blocks", len(blocks)).
		Msg("dataset imported")
	metrics.RecordImport(string(sdr), len(blocks), nil)

	return blocks, nil
}

// Delete removes every block of sdr. Deleting an SDR without data is a no-op.
func (s *Store) Delete(sdr models.SDRID) {
	s.mu.Lock()
	_, existed := s.data[sdr]
	delete(s.data, sdr)
	if s.selected != nil && s.selected.SDR == sdr {
		s.selected = nil
	}
	s.mu.Unlock()

	if !existed {
		return
	}
	s.logger.Info().Str("sdr", string(sdr)).Msg("dataset deleted")
	metrics.RecordDelete(string(sdr))
}

// Blocks returns a copy of the blocks stored for sdr.
func (s *Store) Blocks(sdr models.SDRID) []models.CallBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBlocks(s.data[sdr])
}

// Snapshot returns a copy of the whole block map.
func (s *Store) Snapshot() map[models.SDRID][]models.CallBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[models.SDRID][]models.CallBlock, len(s.data))
	for sdr, blocks := range s.data {
		snap[sdr] = cloneBlocks(blocks)
	}
	return snap
}

// SDRs lists the SDRs that currently have a dataset, in roster order.
func (s *Store) SDRs() []models.SDRID {
	s.mu.RLock()
	ids := make([]models.SDRID, 0, len(s.data))
	for sdr := range s.data {
		ids = append(ids, sdr)
	}
	s.mu.RUnlock()
	return s.roster.Order(ids)
}

// Week returns the Monday of the current week.
func (s *Store) Week() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week
}

// SetWeek moves to the week containing t.
func (s *Store) SetWeek(t time.Time) {
	s.mu.Lock()
	s.week = stats.WeekStart(t.In(s.location))
	s.mu.Unlock()
}

// NextWeek moves forward by seven days.
func (s *Store) NextWeek() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week = s.week.AddDate(0, 0, 7)
	return s.week
}

// PreviousWeek moves back by seven days.
func (s *Store) PreviousWeek() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week = s.week.AddDate(0, 0, -7)
	return s.week
}

// View returns the current view filter.
func (s *Store) View() models.ViewFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView changes the view filter. v must be ViewAll or a roster SDR.
func (s *Store) SetView(v models.ViewFilter) error {
	if v == "" {
		v = models.ViewAll
	}
	if v != models.ViewAll && !s.roster.Has(models.SDRID(v)) {
		return fmt.Errorf("%w: %s", errors.ErrUnknownSDR, v)
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

// Select marks the block with the given ID as selected and returns it.
func (s *Store) Select(id uuid.UUID) (models.CallBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, blocks := range s.data {
		for i := range blocks {
			if blocks[i].ID == id {
				block := cloneBlock(blocks[i])
				s.selected = &block
				return cloneBlock(block), nil
			}
		}
	}
	return models.CallBlock{}, fmt.Errorf("%w: %s", errors.ErrBlockNotFound, id)
}

// Selected returns the selected block, if any.
func (s *Store) Selected() (models.CallBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return models.CallBlock{}, false
	}
	return cloneBlock(*s.selected), true
}

// ClearSelection drops the current block selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Stats aggregates the current week under the current view filter.
func (s *Store) Stats() map[models.SDRID]models.WeeklyStats {
	return stats.Aggregate(s.Snapshot(), s.Week(), s.View())
}

// Grid lays out the current week under the current view filter.
func (s *Store) Grid() calendar.Week {
	return calendar.Build(s.Snapshot(), s.Week(), s.View(), s.roster)
}

// WeekBlocks returns the visible blocks starting in the current week, ordered by
// start time and then by roster order.
func (s *Store) WeekBlocks() []models.CallBlock {
	snap := s.Snapshot()
	week := s.Week()
	view := s.View()

	var out []models.CallBlock
	for _, sdr := range s.roster.Order(keys(snap)) {
		if !view.Matches(sdr) {
			continue
		}
		for _, block := range snap[sdr] {
			if stats.InWeek(block.Start, week) {
				out = append(out, block)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func keys(m map[models.SDRID][]models.CallBlock) []models.SDRID {
	ids := make([]models.SDRID, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	return ids
}

func cloneBlocks(blocks []models.CallBlock) []models.CallBlock {
	if blocks == nil {
		return nil
	}
	out := make([]models.CallBlock, len(blocks))
	for i, b := range blocks {
		out[i] = cloneBlock(b)
	}
	return out
}

func cloneBlock(b models.CallBlock) models.CallBlock {
	if b.Details != nil {
		details := make([]models.CallRecord, len(b.Details))
		copy(details, b.Details)
		b.Details = details
	}
	return b
}
