package segmenter

import (
	"call-blocks/metrics"
	"call-blocks/models"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BlockGap is the largest gap between two consecutive calls of the same block.
const BlockGap = 30 * time.Minute

// DateLabel is the layout of CallBlock.Date (day/month).
const DateLabel = "02/01"

// Segment groups records into call blocks owned by sdr.
// Records are stable-sorted by timestamp; a call joins the pending block when it
// is at most BlockGap after the previous call, otherwise it starts a new block.
// The input slice is not modified.
func Segment(records []models.CallRecord, sdr models.SDRID) []models.CallBlock {
	start := time.Now()
	defer func() { metrics.SegmenterDurationSeconds.Observe(time.Since(start).Seconds()) }()

	blocks := make([]models.CallBlock, 0)
	if len(records) == 0 {
		return blocks
	}

	sorted := make([]models.CallRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var pending []models.CallRecord
	for _, rec := range sorted {
		if len(pending) == 0 {
			pending = append(pending, rec)
			continue
		}

		prev := pending[len(pending)-1]
		if rec.Timestamp.Sub(prev.Timestamp) <= BlockGap {
			pending = append(pending, rec)
			continue
		}

		blocks = append(blocks, newBlock(pending, sdr))
		pending = []models.CallRecord{rec}
	}
	if len(pending) > 0 {
		blocks = append(blocks, newBlock(pending, sdr))
	}

	metrics.SegmenterBlocksTotal.WithLabelValues(string(sdr)).Add(float64(len(blocks)))
	return blocks
}

// newBlock closes a pending group. The group slice is owned by the block afterwards.
func newBlock(group []models.CallRecord, sdr models.SDRID) models.CallBlock {
	first := group[0].Timestamp
	last := group[len(group)-1].Timestamp

	return models.CallBlock{
		ID:       uuid.New(),
		SDR:      sdr,
		Start:    first,
		End:      last,
		Duration: last.Sub(first).Minutes(),
		Calls:    len(group),
		Details:  group,
		Date:     first.Format(DateLabel),
	}
}

// Color returns the display band for a block with the given number of calls.
func Color(calls int) models.BlockColor {
	switch {
	case calls <= 5:
		return models.ColorGreen
	case calls <= 10:
		return models.ColorBlue
	case calls <= 15:
		return models.ColorYellow
	case calls <= 20:
		return models.ColorOrange
	default:
		return models.ColorRed
	}
}
