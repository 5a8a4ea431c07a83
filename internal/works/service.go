// Package works holds the rules for reading, changing and voting on works.
// Every operation takes the acting user explicitly; nil means anonymous.
package works

import (
	"context"
	"errors"
	"fmt"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/repository"
)

// RootView is the landing page: the top works of each category and the
// single best work overall.
type RootView struct {
	Albums   []models.Work `json:"albums"`
	Books    []models.Work `json:"books"`
	Movies   []models.Work `json:"movies"`
	BestWork *models.Work  `json:"best_work"`
}

// Detail is a work together with its votes, newest first.
type Detail struct {
	Work  *models.Work  `json:"work"`
	Votes []models.Vote `json:"votes"`
}

type Service struct {
	works        repository.WorkRepository
	votes        repository.VoteRepository
	rankingLimit int
}

func NewService(works repository.WorkRepository, votes repository.VoteRepository, rankingLimit int) *Service {
	return &Service{works: works, votes: votes, rankingLimit: rankingLimit}
}

func (s *Service) Root(ctx context.Context) (*RootView, error) {
	view := &RootView{}
	targets := map[models.Category]*[]models.Work{
		models.CategoryAlbum: &view.Albums,
		models.CategoryBook:  &view.Books,
		models.CategoryMovie: &view.Movies,
	}
	for category, dst := range targets {
		top, err := s.works.TopByCategory(ctx, category, s.rankingLimit)
		if err != nil {
			return nil, err
		}
		*dst = top
	}

	best, err := s.works.Best(ctx)
	if err != nil {
		return nil, err
	}
	view.BestWork = best
	return view, nil
}

func (s *Service) Index(ctx context.Context) (map[models.Category][]models.Work, error) {
	return s.works.GroupByCategory(ctx)
}

// Draft returns an unsaved, empty work for the new-work form.
func (s *Service) Draft(viewer *models.User) (*models.Work, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	return &models.Work{}, nil
}

// Create validates cmd and stores a new work owned by viewer. On a validation
// failure the unsaved draft is returned alongside the error.
func (s *Service) Create(ctx context.Context, viewer *models.User, cmd WorkCommand) (*models.Work, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	cmd = cmd.Normalize()
	work := &models.Work{UserID: viewer.ID}
	cmd.ApplyTo(work)

	if err := s.check(ctx, cmd, 0); err != nil {
		return work, err
	}
	if err := s.works.Create(ctx, work); err != nil {
		return work, titleConflict(err)
	}
	return work, nil
}

func (s *Service) Show(ctx context.Context, viewer *models.User, id int) (*Detail, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	work, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	votes, err := s.votes.ListByWork(ctx, work.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Work: work, Votes: votes}, nil
}

// Edit returns the work when viewer owns it.
func (s *Service) Edit(ctx context.Context, viewer *models.User, id int) (*models.Work, error) {
	return s.owned(ctx, viewer, id)
}

// Update applies patch to the stored work. On a validation failure the work
// carrying the attempted values is returned with the error and nothing is
// written.
func (s *Service) Update(ctx context.Context, viewer *models.User, id int, patch WorkPatch) (*models.Work, error) {
	work, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	cmd := patch.Apply(CommandFromWork(work)).Normalize()
	cmd.ApplyTo(work)

	if err := s.check(ctx, cmd, work.ID); err != nil {
		return work, err
	}
	if err := s.works.Update(ctx, work); err != nil {
		return work, titleConflict(err)
	}
	return work, nil
}

// Destroy deletes the work and its votes. The deleted work is returned so
// callers can describe it.
func (s *Service) Destroy(ctx context.Context, viewer *models.User, id int) (*models.Work, error) {
	work, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.works.Delete(ctx, work.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return work, nil
}

// Upvote records viewer's vote on the work. The work is returned whenever it
// exists, even if the vote was refused, so callers can still point at it.
func (s *Service) Upvote(ctx context.Context, viewer *models.User, id int) (*models.Work, error) {
	work, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return work, ErrUnauthenticated
	}

	vote := &models.Vote{UserID: viewer.ID, WorkID: work.ID}
	switch err := s.votes.Create(ctx, vote); {
	case err == nil:
		work.VoteCount++
		return work, nil
	case errors.Is(err, repository.ErrDuplicateVote):
		verr := &ValidationError{}
		verr.Add("user", "has already voted for this work")
		return work, verr
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	default:
		return work, err
	}
}

func (s *Service) find(ctx context.Context, id int) (*models.Work, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	work, err := s.works.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return work, nil
}

// owned enforces the gate shared by every mutating operation: a session,
// an existing work, and ownership, checked in that order.
func (s *Service) owned(ctx context.Context, viewer *models.User, id int) (*models.Work, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	work, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !work.OwnedBy(viewer.ID) {
		return nil, ErrForbidden
	}
	return work, nil
}

func (s *Service) check(ctx context.Context, cmd WorkCommand, excludeID int) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	taken, err := s.works.TitleTaken(ctx, models.Category(cmd.Category), cmd.Title, excludeID)
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if taken {
		return titleConflict(repository.ErrDuplicateTitle)
	}
	return nil
}

// titleConflict turns a lost race on the title index into the same field
// error the up-front check reports.
func titleConflict(err error) error {
	if !errors.Is(err, repository.ErrDuplicateTitle) {
		return err
	}
	verr := &ValidationError{}
	verr.Add("title", "has already been taken")
	return verr
}
