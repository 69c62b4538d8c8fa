package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/entitlements"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

// MaxPhotoBytes bounds uploaded photos.
const MaxPhotoBytes = 4 << 20

// LevelResolver returns a user's entitlement level.
type LevelResolver interface {
	Level(ctx context.Context, userID string) (entitlements.Level, error)
}

// Service contains business logic for resumes.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Levels    LevelResolver
	Validator *validation.Validator
	Now       func() time.Time
}

func NewService(repo Repo, store object.ObjectStore, levels LevelResolver) *Service {
	return &Service{
		Repo:      repo,
		Store:     store,
		Levels:    levels,
		Validator: validation.New(),
		Now:       time.Now,
	}
}

// ListResult is a user's resumes with the quota view.
type ListResult struct {
	Resumes    []Resume
	TotalCount int
	CanCreate  bool
}

// Save creates the resume when it has no id and updates it otherwise.
// Creation is subject to the level's quota. Styling fields only change when
// the level allows customizations.
func (s *Service) Save(ctx context.Context, userID string, in Resume) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, ErrUnauthorized
	}
	in = in.Clone()
	in.Skills = NormalizeSkills(in.Skills)
	if err := s.Validator.Struct(in); err != nil {
		return Resume{}, err
	}

	level, err := s.Levels.Level(ctx, userID)
	if err != nil {
		return Resume{}, fmt.Errorf("resolve level: %w", err)
	}
	now := s.now().UTC()
	in.UserID = userID
	in.UpdatedAt = now

	if in.ID == "" {
		if !entitlements.CanUseCustomizations(level) {
			in.ColorHex, in.BorderStyle = "", ""
		}
		applyStyleDefaults(&in)
		in.ID = uuid.NewString()
		in.PhotoKey = ""
		in.CreatedAt = now
		if err := s.Repo.Create(ctx, in, entitlements.ResumeQuota(level)); err != nil {
			if errors.Is(err, ErrUpgradeRequired) {
				return Resume{}, ErrUpgradeRequired
			}
			return Resume{}, fmt.Errorf("create resume: %w", err)
		}
		return in, nil
	}

	if !validID(in.ID) {
		return Resume{}, ErrNotFound
	}
	existing, err := s.Repo.GetByID(ctx, userID, in.ID)
	if err != nil {
		return Resume{}, err
	}
	if !entitlements.CanUseCustomizations(level) {
		in.ColorHex, in.BorderStyle = existing.ColorHex, existing.BorderStyle
	}
	applyStyleDefaults(&in)
	in.PhotoKey = existing.PhotoKey
	in.CreatedAt = existing.CreatedAt
	if err := s.Repo.Update(ctx, in); err != nil {
		return Resume{}, fmt.Errorf("update resume: %w", err)
	}
	return in, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrInvalidInput
	}
	if !validID(id) {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// validID reports whether id can name a stored resume: a UUID in its
// canonical 36-character form.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// List returns resumes newest first together with the create capability.
func (s *Service) List(ctx context.Context, userID string) (ListResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ListResult{}, ErrUnauthorized
	}
	items, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}
	level, err := s.Levels.Level(ctx, userID)
	if err != nil {
		return ListResult{}, fmt.Errorf("resolve level: %w", err)
	}
	return ListResult{
		Resumes:    items,
		TotalCount: len(items),
		CanCreate:  entitlements.CanCreateResume(level, len(items)),
	}, nil
}

// CanCreate reports whether the user may start another resume.
func (s *Service) CanCreate(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUnauthorized
	}
	count, err := s.Repo.CountByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count resumes: %w", err)
	}
	level, err := s.Levels.Level(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve level: %w", err)
	}
	return entitlements.CanCreateResume(level, count), nil
}

// CountByUser reports how many resumes the user owns.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrUnauthorized
	}
	return s.Repo.CountByUser(ctx, userID)
}

// Delete removes the resume and its stored photo.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.removeObject(ctx, res.PhotoKey)
	return nil
}

// UploadPhoto stores an image for the resume, replacing any previous photo.
func (s *Service) UploadPhoto(ctx context.Context, userID, id, fileName string, r io.Reader) (Resume, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = "photo"
	}

	key, size, mimeType, err := s.Store.Save(ctx, userID, fileName, io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return Resume{}, fmt.Errorf("save photo: %w", err)
	}
	if size > MaxPhotoBytes {
		s.removeObject(ctx, key)
		return Resume{}, ErrPhotoTooLarge
	}
	if !strings.HasPrefix(mimeType, "image/") {
		s.removeObject(ctx, key)
		return Resume{}, fmt.Errorf("%w: photo must be an image", ErrInvalidInput)
	}
	if err := s.Repo.SetPhoto(ctx, userID, id, key); err != nil {
		s.removeObject(ctx, key)
		return Resume{}, err
	}
	s.removeObject(ctx, res.PhotoKey)
	res.PhotoKey = key
	return res, nil
}

// DeletePhoto clears the resume's photo. Clearing an empty photo is a no-op.
func (s *Service) DeletePhoto(ctx context.Context, userID, id string) error {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if res.PhotoKey == "" {
		return nil
	}
	if err := s.Repo.SetPhoto(ctx, userID, id, ""); err != nil {
		return err
	}
	s.removeObject(ctx, res.PhotoKey)
	return nil
}

// OpenPhoto streams the stored photo.
func (s *Service) OpenPhoto(ctx context.Context, userID, id string) (io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if res.PhotoKey == "" {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, res.PhotoKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// NormalizeSkills trims entries, drops blanks and keeps the first occurrence
// of each skill.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, raw := range skills {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func applyStyleDefaults(r *Resume) {
	if r.ColorHex == "" {
		r.ColorHex = DefaultColorHex
	}
	if r.BorderStyle == "" {
		r.BorderStyle = DefaultBorderStyle
	}
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if key == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.photo.delete_failed", map[string]any{
			"storage_key": key,
			"error":       err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
