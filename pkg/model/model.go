package model

// Ticket is one inbound support request. Lat/Lon are set only when the
// source row carried pre-geocoded coordinates.
type Ticket struct {
	GUID    string   `json:"guid"`
	Text    string   `json:"text"`
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Segment string   `json:"segment"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoords reports whether the ticket carries explicit coordinates.
func (t *Ticket) HasCoords() bool {
	return t.Lat != nil && t.Lon != nil
}

// Manager is a support agent. Skills hold uppercased skill tokens
// (VIP, KZ, ENG, ...). Chief is derived from the normalised position.
type Manager struct {
	Name     string          `json:"name"`
	Position string          `json:"position"`
	Office   string          `json:"office"`
	Skills   map[string]bool `json:"skills"`
	Chief    bool            `json:"chief"`
	Load     int             `json:"load"`
}

// HasSkill reports whether the manager carries the given skill token.
func (m *Manager) HasSkill(skill string) bool {
	return m.Skills[skill]
}

// Office is a business unit. Lat/Lon are set when the source row carried
// coordinates; otherwise they are resolved through the geo index and may
// be unknown.
type Office struct {
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Enrichment holds the analytic attributes derived from a ticket body.
type Enrichment struct {
	Category       string   `json:"ai_type"`
	CategoryScore  int      `json:"ai_type_score"`
	Language       string   `json:"ai_lang"`
	Sentiment      string   `json:"sentiment"`
	Priority       int      `json:"priority"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
}

// Trace records every decision made while routing one ticket.
type Trace struct {
	HomeOffice       string   `json:"home_office"`
	OfficeReason     string   `json:"office_reason"`
	DistanceKm       *float64 `json:"distance_km,omitempty"`
	InitialPool      int      `json:"initial_pool"`
	AfterVIP         *int     `json:"after_vip,omitempty"`
	AfterChief       *int     `json:"after_chief,omitempty"`
	AfterLang        *int     `json:"after_lang,omitempty"`
	Selected         string   `json:"selected,omitempty"`
	Top2             []string `json:"top2,omitempty"`
	RRCounter        *int     `json:"rr_counter,omitempty"`
	RedirectedOffice string   `json:"redirected_to_office,omitempty"`
	RedirectedKm     *float64 `json:"redirected_distance_km,omitempty"`
	Escalation       bool     `json:"escalation"`
	EscalationReason string   `json:"escalation_reason,omitempty"`
	RoutingMs        int64    `json:"routing_ms"`
}

// Assignment is the routing outcome for one ticket. Manager is either a
// manager name or EscalationSentinel.
type Assignment struct {
	GUID         string     `json:"guid"`
	Enrichment   Enrichment `json:"enrichment"`
	Segment      string     `json:"segment"`
	Office       string     `json:"office"`
	OfficeReason string     `json:"office_reason"`
	DistanceKm   *float64   `json:"distance_km,omitempty"`
	Manager      string     `json:"manager"`
	Trace        Trace      `json:"trace"`
}

// Escalated reports whether the assignment hit the escalation sentinel.
func (a *Assignment) Escalated() bool {
	return a.Manager == EscalationSentinel
}
