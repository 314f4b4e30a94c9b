package movies

import (
	"context"
	"errors"
	"log/slog"
	"time"

	govalidator "github.com/go-playground/validator/v10"

	"watchlist/proj/internal/domain/filters"
	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/id"
	"watchlist/proj/internal/lib/validator"
	"watchlist/proj/internal/services/auth"
	"watchlist/proj/internal/storage"
)

// MoviesStorage is scoped by owner on every call. A record owned by someone
// else is reported as storage.ErrNotFound.
type MoviesStorage interface {
	List(ctx context.Context, ownerID string, f filters.MovieFilter) ([]models.Movie, error)
	Get(ctx context.Context, id, ownerID string) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Update(ctx context.Context, id, ownerID string, patch models.MoviePatch) (*models.Movie, error)
	Delete(ctx context.Context, id, ownerID string) (*models.Movie, error)
	ToggleWatched(ctx context.Context, id, ownerID string) (*models.Movie, error)
	Stats(ctx context.Context, ownerID string) (*models.MovieStats, error)
}

// OperationObserver receives the outcome of every movie operation.
type OperationObserver interface {
	ObserveMovieOperation(operation string, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveMovieOperation(string, error) {}

type MovieService struct {
	log       *slog.Logger
	storage   MoviesStorage
	validator *govalidator.Validate
	observer  OperationObserver
}

func New(log *slog.Logger, storage MoviesStorage, observer OperationObserver) *MovieService {
	if observer == nil {
		observer = noopObserver{}
	}
	return &MovieService{
		log:       log,
		storage:   storage,
		validator: validator.New(),
		observer:  observer,
	}
}

func (s *MovieService) authorize(identity models.Identity) error {
	if identity.IsAnonymous() {
		return auth.ErrUnauthenticated
	}
	return nil
}

// handleStorageErr maps storage sentinels and logs unexpected failures.
func (s *MovieService) handleStorageErr(log *slog.Logger, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("movie not found")
		return ErrMovieNotFound
	}
	log.Error(err.Error())
	return err
}

func (s *MovieService) List(ctx context.Context, identity models.Identity, in FilterInput) (movies []models.Movie, err error) {
	const op = "movies.MovieService.List"
	defer func() { s.observer.ObserveMovieOperation("list", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	movies, err = s.storage.List(ctx, identity.UserID, in.Filter())
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return movies, nil
}

func (s *MovieService) Get(ctx context.Context, identity models.Identity, in MovieIDInput) (movie *models.Movie, err error) {
	const op = "movies.MovieService.Get"
	defer func() { s.observer.ObserveMovieOperation("get", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "id", in.ID, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	movie, err = s.storage.Get(ctx, in.ID, identity.UserID)
	if err != nil {
		return nil, s.handleStorageErr(log, err)
	}
	return movie, nil
}

func (s *MovieService) Create(ctx context.Context, identity models.Identity, in CreateMovieInput) (movie *models.Movie, err error) {
	const op = "movies.MovieService.Create"
	defer func() { s.observer.ObserveMovieOperation("create", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "title", in.Title, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	movie = &models.Movie{
		ID:        id.NewUUID(),
		Title:     in.Title,
		Year:      in.Year,
		Genre:     in.Genre,
		Rating:    in.Rating,
		Notes:     in.Notes,
		UserID:    identity.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if in.Watched != nil {
		movie.Watched = *in.Watched
	}
	movie, err = s.storage.Insert(ctx, movie)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	log.Info("movie added", "id", movie.ID)
	return movie, nil
}

func (s *MovieService) Update(ctx context.Context, identity models.Identity, in UpdateMovieInput) (movie *models.Movie, err error) {
	const op = "movies.MovieService.Update"
	defer func() { s.observer.ObserveMovieOperation("update", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "id", in.ID, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	patch := in.Patch()
	if patch.IsEmpty() {
		movie, err = s.storage.Get(ctx, in.ID, identity.UserID)
	} else {
		movie, err = s.storage.Update(ctx, in.ID, identity.UserID, patch)
	}
	if err != nil {
		return nil, s.handleStorageErr(log, err)
	}
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, identity models.Identity, in MovieIDInput) (movie *models.Movie, err error) {
	const op = "movies.MovieService.Delete"
	defer func() { s.observer.ObserveMovieOperation("delete", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "id", in.ID, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	movie, err = s.storage.Delete(ctx, in.ID, identity.UserID)
	if err != nil {
		return nil, s.handleStorageErr(log, err)
	}
	log.Info("movie deleted")
	return movie, nil
}

func (s *MovieService) ToggleWatched(ctx context.Context, identity models.Identity, in MovieIDInput) (movie *models.Movie, err error) {
	const op = "movies.MovieService.ToggleWatched"
	defer func() { s.observer.ObserveMovieOperation("toggle_watched", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "id", in.ID, "user_id", identity.UserID)
	if err := validator.ValidateStruct(s.validator, in); err != nil {
		return nil, err
	}
	movie, err = s.storage.ToggleWatched(ctx, in.ID, identity.UserID)
	if err != nil {
		return nil, s.handleStorageErr(log, err)
	}
	return movie, nil
}

// Stats reads total, watched and the average rating from one snapshot and
// derives unwatched from them, so Total == Watched + Unwatched always holds.
func (s *MovieService) Stats(ctx context.Context, identity models.Identity) (stats *models.MovieStats, err error) {
	const op = "movies.MovieService.Stats"
	defer func() { s.observer.ObserveMovieOperation("stats", err) }()
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	log := s.log.With("op", op, "user_id", identity.UserID)
	stats, err = s.storage.Stats(ctx, identity.UserID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	stats.Unwatched = stats.Total - stats.Watched
	return stats, nil
}
