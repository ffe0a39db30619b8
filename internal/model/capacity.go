package model

// CapacityStatus is a derived snapshot for one occurrence.  It is never
// persisted: the counts are computed on demand from active registration
// rows so the figures can never drift from the source of truth.
//
// Available is nil when the event is uncapped.  IsFull is always false
// for uncapped events.  DeadlinePassed is false when the event has no
// registration deadline.
type CapacityStatus struct {
	Registered     int  `json:"registered"`
	Waitlisted     int  `json:"waitlisted"`
	Available      *int `json:"available"`
	IsFull         bool `json:"is_full"`
	DeadlinePassed bool `json:"deadline_passed"`
}

// OccurrenceCounts carries the raw per-occurrence counters read under
// the occurrence lock.  Registered includes checked-in rows, since both
// consume a capacity slot.
type OccurrenceCounts struct {
	Registered int
	Waitlisted int
}

// RegistrationStats aggregates registrations for one occurrence by
// status.  TotalAttendees counts heads rather than rows: every active
// (registered or checked-in) row contributes itself plus its
// additional attendees.
type RegistrationStats struct {
	Registered     int `json:"registered"`
	Waitlisted     int `json:"waitlisted"`
	CheckedIn      int `json:"checked_in"`
	Cancelled      int `json:"cancelled"`
	NoShow         int `json:"no_show"`
	TotalAttendees int `json:"total_attendees"`
}
