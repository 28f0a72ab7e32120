package likes

import (
	"context"
	"fmt"
	"sync"

	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/models"
	"github.com/remedyroot/remedyroot-golang/internal/optimistic"
	"github.com/sirupsen/logrus"
)

const likesTable = "remedy_likes"

// Entity is one likeable remedy as this session sees it. LikesCount and
// Liked must converge with the remedy_likes rows once any in-flight toggle
// settles.
type Entity struct {
	ID         int64 `json:"id"`
	LikesCount int64 `json:"likesCount"`
	Liked      bool  `json:"isLikedByCurrentUser"`
}

// Store holds this session's view of likeable remedies and runs like/unlike
// toggles through the shared optimistic runner: flip locally, write the
// relation row, roll back to the saved pre-image on failure.
type Store struct {
	mu       sync.Mutex
	entities map[int64]Entity

	userID int64
	gw     gateway.Gateway
	runner *optimistic.Runner
	log    *logrus.Logger
}

func NewStore(userID int64, gw gateway.Gateway, runner *optimistic.Runner, log *logrus.Logger) *Store {
	return &Store{
		entities: make(map[int64]Entity),
		userID:   userID,
		gw:       gw,
		runner:   runner,
		log:      log,
	}
}

// Load seeds (or refreshes) an entity in the store, e.g. when a listing is
// rendered. A load never clobbers an entity that is mid-toggle.
func (s *Store) Load(e Entity) {
	if s.runner.Pending(s.key(e.ID)) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
}

// Get returns the session's current view of a remedy.
func (s *Store) Get(remedyID int64) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[remedyID]
	return e, ok
}

// Pending reports whether a toggle for the remedy is in flight.
func (s *Store) Pending(remedyID int64) bool {
	return s.runner.Pending(s.key(remedyID))
}

// Toggle flips the like state for a remedy. The flip is applied locally
// before the gateway call; a repeated trigger while the first is pending has
// no observable effect. On failure the entity is restored to the exact value
// captured before the flip (never re-inverted), and the authoritative state
// is re-fetched so a stale pre-image cannot stick.
//
// The pre-image is captured inside the apply step, after the pending guard
// has admitted this toggle, so it always includes any toggle that committed
// in the meantime.
//
// Returns started=false when the toggle was dropped by the pending guard or
// the remedy is unknown to this session.
func (s *Store) Toggle(ctx context.Context, remedyID int64) (started bool, err error) {
	s.mu.Lock()
	_, ok := s.entities[remedyID]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	var pre Entity
	var nowLiked bool
	return s.runner.Do(ctx, s.key(remedyID), optimistic.Mutation{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e := s.entities[remedyID]
			pre = e
			e.Liked = !e.Liked
			if e.Liked {
				e.LikesCount++
			} else if e.LikesCount > 0 {
				e.LikesCount--
			}
			nowLiked = e.Liked
			s.entities[remedyID] = e
		},
		Remote: func(ctx context.Context) error {
			if nowLiked {
				if _, err := s.gw.Create(ctx, likesTable, gateway.Row{
					"user_id":   s.userID,
					"remedy_id": remedyID,
				}); err != nil {
					return err
				}
			} else {
				if err := s.gw.Delete(ctx, likesTable, gateway.Filter{
					"user_id":   s.userID,
					"remedy_id": remedyID,
				}); err != nil {
					return err
				}
			}
			s.writeBackCount(ctx, remedyID)
			return nil
		},
		Rollback: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.entities[remedyID] = pre
		},
		AfterRollback: func(error) {
			s.refresh(ctx, remedyID)
		},
		FailureMessage: gateway.UserMessage,
	})
}

// writeBackCount folds the committed toggle into the denormalized
// remedies.likes_count column so listings read through the catalog agree
// with the relation rows. Best-effort: the relation row is the source of
// truth, so a failed write-back is logged and the next commit repairs it.
func (s *Store) writeBackCount(ctx context.Context, remedyID int64) {
	count, err := s.gw.Count(ctx, likesTable, gateway.Filter{"remedy_id": remedyID})
	if err != nil {
		s.log.WithFields(logrus.Fields{"remedy_id": remedyID, "error": err}).
			Debug("like count write-back skipped; count unavailable")
		return
	}
	err = s.gw.Update(ctx, "remedies", gateway.Filter{"id": remedyID}, gateway.Row{
		"likes_count": count,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"remedy_id": remedyID, "error": err}).
			Warn("like count write-back failed")
	}
}

// refresh re-derives the entity from the gateway after a rollback.
// Best-effort: the pre-image restore already happened, so a failed refresh
// just leaves that value in place.
func (s *Store) refresh(ctx context.Context, remedyID int64) {
	count, err := s.gw.Count(ctx, likesTable, gateway.Filter{"remedy_id": remedyID})
	if err != nil {
		s.log.WithFields(logrus.Fields{"remedy_id": remedyID, "error": err}).
			Debug("like refresh failed; keeping restored pre-image")
		return
	}

	mine, err := s.gw.Read(ctx, likesTable, gateway.Filter{
		"user_id":   s.userID,
		"remedy_id": remedyID,
	}, nil)
	if err != nil {
		s.log.WithFields(logrus.Fields{"remedy_id": remedyID, "error": err}).
			Debug("like refresh failed; keeping restored pre-image")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entities[remedyID]
	e.ID = remedyID
	e.LikesCount = count
	e.Liked = len(mine) > 0
	s.entities[remedyID] = e
}

// LoadFromRemedy seeds the store for a remedy the session is about to show.
// The count is derived from the remedy_likes rows, the same source refresh
// uses, so a session seeded after another user's toggle sees that toggle
// even before the denormalized listing column catches up. The listing row's
// own count is only a fallback for when the relation table is unreachable.
func (s *Store) LoadFromRemedy(ctx context.Context, r models.Remedy) {
	count, err := s.gw.Count(ctx, likesTable, gateway.Filter{"remedy_id": r.ID})
	if err != nil {
		count = r.LikesCount
	}

	mine, err := s.gw.Read(ctx, likesTable, gateway.Filter{
		"user_id":   s.userID,
		"remedy_id": r.ID,
	}, nil)
	liked := err == nil && len(mine) > 0
	s.Load(Entity{ID: r.ID, LikesCount: count, Liked: liked})
}

func (s *Store) key(remedyID int64) string {
	return fmt.Sprintf("remedy:%d", remedyID)
}
