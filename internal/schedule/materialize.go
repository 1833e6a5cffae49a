package schedule

import (
	"fmt"
	"time"

	"schedcal/internal/model"
)

// Materialized pairs an input event with its resolved occurrence and
// recurrence policy. It is the shared intermediate representation consumed
// by both the ICS renderer and the remote synchronizer, which guarantees
// output parity between the downloadable file and the remote sync.
type Materialized struct {
	Event      model.ScheduleEvent
	Occurrence model.ResolvedOccurrence
	Policy     model.RecurrencePolicy
}

// MaterializeRequest validates the whole request, then resolves every event
// into a concrete occurrence and recurrence policy, in input order.
//
// The recurrence horizon is computed once from now and applied to every
// recurring event in the request. Validation failures abort before any
// event is materialized.
func MaterializeRequest(req model.ExportRequest, now time.Time) ([]Materialized, error) {
	loc, err := loadLocation(req.Timezone)
	if err != nil {
		return nil, err
	}

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	until := Horizon(req, now, loc)

	items := make([]Materialized, 0, len(req.Events))
	for i, ev := range req.Events {
		occ, rerr := Resolve(ev, now, loc)
		if rerr != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i, ev.Title, rerr)
		}
		policy, perr := Plan(ev, until)
		if perr != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i, ev.Title, perr)
		}
		items = append(items, Materialized{Event: ev, Occurrence: occ, Policy: policy})
	}
	return items, nil
}

// loadLocation resolves the request's IANA timezone identifier. The timezone
// is an explicit configuration field; an empty value means UTC rather than
// whatever the process environment happens to be set to.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
