package domain

// Venue is a place concerts are held.
type Venue struct {
	ID    int64
	Title string
	City  string
}
