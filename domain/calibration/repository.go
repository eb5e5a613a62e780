package calibration

import "context"

// Repository defines the interface for profile persistence operations.
type Repository interface {
	// FindByName retrieves a profile by name.
	// Returns nil if not found.
	FindByName(ctx context.Context, name string) (*Profile, error)

	// FindAll retrieves all profiles.
	FindAll(ctx context.Context) ([]*Profile, error)

	// Save inserts or replaces a profile by name.
	Save(ctx context.Context, profile *Profile) error

	// Delete removes a profile by name.
	Delete(ctx context.Context, name string) error
}
