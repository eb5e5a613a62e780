package calibration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cabal-assist/domain/screen"
)

// Common errors for calibration operations.
var (
	ErrProfileNotFound = errors.New("calibration profile not found")
	ErrEmptyName       = errors.New("profile name must not be empty")
)

// Service manages the active calibration profile.
// Edits go to a working copy that is written through to the repository;
// runs take their own snapshot with Snapshot.
type Service struct {
	repo Repository
	now  func() time.Time

	mu     sync.RWMutex
	active *Profile
}

// NewService creates a new calibration service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Load makes the named profile active, creating an empty one if it does not exist yet.
func (s *Service) Load(ctx context.Context, name string) (*Profile, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	p, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = NewProfile(name)
	}

	s.mu.Lock()
	s.active = p
	s.mu.Unlock()

	return p.Clone(), nil
}

// Snapshot returns a copy of the active profile that later edits cannot touch.
func (s *Service) Snapshot() (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil, ErrProfileNotFound
	}
	return s.active.Clone(), nil
}

// ListProfiles retrieves all profiles sorted by name.
func (s *Service) ListProfiles(ctx context.Context) ([]*Profile, error) {
	profiles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// SetButton updates one button of the active profile and saves it.
func (s *Service) SetButton(ctx context.Context, role Role, pt screen.Point) error {
	return s.update(ctx, func(p *Profile) error {
		p.SetButton(role, pt)
		return nil
	})
}

// SetArea updates one area of the active profile and saves it.
func (s *Service) SetArea(ctx context.Context, area Area, r screen.Region) error {
	return s.update(ctx, func(p *Profile) error {
		return p.SetArea(area, r)
	})
}

// SetDelayMs updates the action delay of the active profile and saves it.
func (s *Service) SetDelayMs(ctx context.Context, delayMs int) error {
	if delayMs < 0 {
		delayMs = 0
	}
	return s.update(ctx, func(p *Profile) error {
		p.DelayMs = delayMs
		return nil
	})
}

// DeleteProfile removes a profile from storage.
func (s *Service) DeleteProfile(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

func (s *Service) update(ctx context.Context, mutate func(p *Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrProfileNotFound
	}

	next := s.active.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	next.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.active = next
	return nil
}
