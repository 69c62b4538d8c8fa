package resumes

import "context"

// Repo persists resumes. Every lookup is scoped by owner.
type Repo interface {
	// Create inserts r unless the owner already has quota resumes, in which
	// case it returns ErrUpgradeRequired. A negative quota means no cap.
	Create(ctx context.Context, r Resume, quota int) error
	Update(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, userID, id string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
	SetPhoto(ctx context.Context, userID, id, photoKey string) error
}
