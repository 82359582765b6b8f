package domain

// Band is a performing act with the city it calls home.
type Band struct {
	ID       int64
	Name     string
	Hometown string
}
