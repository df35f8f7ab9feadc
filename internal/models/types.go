package models

import "time"

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusIncomplete || s == StatusComplete
}

// Profile holds the optional respondent details collected at registration.
type Profile struct {
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Education  string `json:"education,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Scores maps an interest type code to its tally.
type Scores map[TypeCode]int

// Get returns the tally for code, 0 when absent.
func (s Scores) Get(code TypeCode) int {
	if s == nil {
		return 0
	}
	return s[code]
}

// Session is one respondent attempt, from registration to completion.
// Scores, TopThreeCode and CompletedAt stay empty while Status is incomplete.
type Session struct {
	ID           int64             `json:"id"`
	SessionID    string            `json:"session_id"`
	Profile      Profile           `json:"profile"`
	Status       Status            `json:"status"`
	Answers      map[string]string `json:"answers,omitempty"`
	Scores       Scores            `json:"scores,omitempty"`
	TopThreeCode string            `json:"top_three_code,omitempty"`
	TimeTaken    int               `json:"time_taken,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`
	IPAddress    string            `json:"ip_address,omitempty"`
}

// Complete reports whether the session has been completed.
func (s *Session) Complete() bool {
	return s != nil && s.Status == StatusComplete
}

// Counts aggregates session totals for the admin dashboard.
type Counts struct {
	Total      int `json:"total"`
	Complete   int `json:"complete"`
	Incomplete int `json:"incomplete"`
	Today      int `json:"today"`
}

// AuditEntry records an administrative action.
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
