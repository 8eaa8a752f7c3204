package db

// Repositories provides access to all database repositories
type Repositories struct {
	Markers *MarkerRepository
	Videos  *VideoRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Markers: NewMarkerRepository(db),
		Videos:  NewVideoRepository(db),
	}
}
