package analytics

import "sort"

// Summarize derives the read-only summary from a record. TotalViews is copied
// from the counter rather than recomputed; first/last viewed come straight
// from the ends of the event slice, whose insertion order is chronological.
func (r Record) Summarize() Summary {
	s := Summary{
		TotalViews:      r.TotalViews,
		UniqueCountries: []string{},
	}

	if n := len(r.Events); n > 0 {
		first := r.Events[0].Timestamp
		last := r.Events[n-1].Timestamp
		s.FirstViewed = &first
		s.LastViewed = &last
	}

	seen := make(map[string]struct{})
	for _, ev := range r.Events {
		if ev.Country == nil {
			continue
		}
		if _, ok := seen[*ev.Country]; ok {
			continue
		}
		seen[*ev.Country] = struct{}{}
		s.UniqueCountries = append(s.UniqueCountries, *ev.Country)
	}
	sort.Strings(s.UniqueCountries)

	for _, ev := range r.Events {
		if ev.DeviceType == nil {
			s.DeviceBreakdown.Unknown++
			continue
		}
		switch *ev.DeviceType {
		case DeviceMobile:
			s.DeviceBreakdown.Mobile++
		case DeviceDesktop:
			s.DeviceBreakdown.Desktop++
		case DeviceTablet:
			s.DeviceBreakdown.Tablet++
		default:
			s.DeviceBreakdown.Unknown++
		}
	}

	return s
}
