package transitfusion

import (
	"cmp"
	"slices"
	"time"
)

// AgencyStatus describes one registered agency.
type AgencyStatus struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Downloaded bool   `json:"downloaded"`
	Loaded     bool   `json:"loaded"`
	Realtime   bool   `json:"realtime"`
}

// Status summarises what the service holds.
type Status struct {
	Status    string         `json:"status"`
	Agency    string         `json:"agency,omitempty"`
	LoadedAt  time.Time      `json:"loaded_at,omitzero"`
	Stops     int            `json:"stops"`
	Routes    int            `json:"routes"`
	Trips     int            `json:"trips"`
	StopTimes int            `json:"stop_times"`
	Agencies  []AgencyStatus `json:"agencies"`
}

// Status reports "ok" once a dataset is loaded and "empty" before that.
func (s *Service) Status() Status {
	st := Status{Status: "empty"}
	if ds, err := s.store.Current(); err == nil {
		st.Status = "ok"
		st.Agency = ds.AgencyCode
		st.LoadedAt = ds.LoadedAt
		st.Stops = len(ds.Stops)
		st.Routes = len(ds.Routes)
		st.Trips = len(ds.Trips)
		st.StopTimes = len(ds.StopTimes)
	}
	for code, name := range s.registry.ListAgencies() {
		feed, _ := s.registry.Get(code)
		st.Agencies = append(st.Agencies, AgencyStatus{
			Code:       code,
			Name:       name,
			Downloaded: s.registry.IsDownloaded(code),
			Loaded:     code == st.Agency,
			Realtime:   feed.HasRealtime(),
		})
	}
	slices.SortFunc(st.Agencies, func(a, b AgencyStatus) int { return cmp.Compare(a.Code, b.Code) })
	return st
}
