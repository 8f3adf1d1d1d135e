package espn

// Wire types for the scoreboard endpoint. Only the fields the pipeline
// consumes are declared; the payload carries far more.

type scoreboardResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID           string                `json:"id"`
	Date         string                `json:"date"`
	Season       *seasonResponse       `json:"season"`
	Week         *weekResponse         `json:"week"`
	Competitions []competitionResponse `json:"competitions"`
}

type seasonResponse struct {
	Year int `json:"year"`
}

type weekResponse struct {
	Number int `json:"number"`
}

type competitionResponse struct {
	Attendance  int                  `json:"attendance"`
	Venue       *venueResponse       `json:"venue"`
	Weather     *weatherResponse     `json:"weather"`
	Competitors []competitorResponse `json:"competitors"`
}

type venueResponse struct {
	FullName string `json:"fullName"`
}

type weatherResponse struct {
	Temperature  *int   `json:"temperature"`
	ConditionID  int    `json:"conditionId"`
	DisplayValue string `json:"displayValue"`
}

type competitorResponse struct {
	HomeAway string         `json:"homeAway"`
	Team     teamResponse   `json:"team"`
	Score    *scoreResponse `json:"score"`
}

type teamResponse struct {
	DisplayName string `json:"displayName"`
}

type scoreResponse struct {
	Value *float64 `json:"value"`
}
