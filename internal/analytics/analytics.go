// Package analytics holds the per-note access log and its derived summary.
// Records are append-only: one event per consumption attempt, in arrival
// order, with the counter kept in lockstep by AddEvent.
package analytics

// Event is one immutable observation of an access attempt. Field names and
// optionality match the stored wire format.
type Event struct {
	Timestamp  uint64  `json:"timestamp"`
	UserAgent  *string `json:"user_agent"`
	Country    *string `json:"country"`
	DeviceType *string `json:"device_type"`
}

// Record is the append-only log for one note identifier. TotalViews is
// authoritative and must only be advanced through AddEvent.
type Record struct {
	NoteID     string  `json:"note_id"`
	Events     []Event `json:"events"`
	TotalViews uint32  `json:"total_views"`
	CreatedAt  uint64  `json:"created_at"`
}

func NewRecord(noteID string, createdAt uint64) Record {
	return Record{
		NoteID:    noteID,
		Events:    []Event{},
		CreatedAt: createdAt,
	}
}

// AddEvent appends one event and bumps the counter atomically with it.
func (r *Record) AddEvent(e Event) {
	r.Events = append(r.Events, e)
	r.TotalViews++
}

// Breakdown counts events per device category.
type Breakdown struct {
	Mobile  uint32 `json:"mobile"`
	Desktop uint32 `json:"desktop"`
	Tablet  uint32 `json:"tablet"`
	Unknown uint32 `json:"unknown"`
}

// Summary is a derived projection over a record. It is recomputed on every
// query and never persisted.
type Summary struct {
	TotalViews      uint32    `json:"total_views"`
	LastViewed      *uint64   `json:"last_viewed"`
	FirstViewed     *uint64   `json:"first_viewed"`
	UniqueCountries []string  `json:"unique_countries"`
	DeviceBreakdown Breakdown `json:"device_breakdown"`
}

// EmptySummary is what callers report when no record exists for an id.
// Querying analytics for an unknown note is a valid, successful operation.
func EmptySummary() Summary {
	return Summary{UniqueCountries: []string{}}
}
