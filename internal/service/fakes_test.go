package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"rps_api/internal/domain"
)

// In-memory fakes for the repository and classifier ports. Each fake supports
// an optional hook to force failures at a chosen point.

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int64
	matches map[int64]*domain.Match
	moves   *fakeMoveRepo

	failUpdate error
	updateHook func()
}

func newFakeMatchRepo(moves *fakeMoveRepo) *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int64]*domain.Match{}, moves: moves}
}

func (r *fakeMatchRepo) Create(_ context.Context, m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.matches[m.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) Get(_ context.Context, id int64) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) GetWithMoves(ctx context.Context, id int64) (*domain.Match, []*domain.Move, error) {
	m, err := r.Get(ctx, id)
	if err != nil || m == nil {
		return m, nil, err
	}
	var mvs []*domain.Move
	if r.moves != nil {
		mvs = r.moves.forMatch(id)
	}
	return m, mvs, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, m *domain.Match, from domain.MatchStatus) error {
	if r.updateHook != nil {
		r.updateHook()
	}
	if r.failUpdate != nil {
		return r.failUpdate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[m.ID]
	if !ok {
		return domain.E(domain.KindNotFound, "match not found")
	}
	if stored.Status != from {
		return domain.E(domain.KindInvalidTransition, "match status changed concurrently")
	}
	cp := *m
	r.matches[m.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) ListForPlayer(_ context.Context, playerID int64, status *domain.MatchStatus, limit, offset int) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Match
	for _, m := range r.matches {
		if !m.HasParticipant(playerID) {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMatchRepo) CancelAllForPlayer(_ context.Context, playerID int64) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched, changed int64
	for _, m := range r.matches {
		if !m.HasParticipant(playerID) || m.Status.Terminal() {
			continue
		}
		matched++
		m.Status = domain.StatusCancelled
		changed++
	}
	return matched, changed, nil
}

type fakeMoveRepo struct {
	mu     sync.Mutex
	nextID int64
	moves  map[int64]*domain.Move

	failAdd error
	addHook func()
}

func newFakeMoveRepo() *fakeMoveRepo {
	return &fakeMoveRepo{moves: map[int64]*domain.Move{}}
}

func (r *fakeMoveRepo) Add(_ context.Context, mv *domain.Move) error {
	if r.addHook != nil {
		r.addHook()
	}
	if r.failAdd != nil {
		return r.failAdd
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.moves {
		if existing.MatchID == mv.MatchID && existing.PlayerID == mv.PlayerID {
			return domain.E(domain.KindAlreadySubmitted, "player has already submitted a move for this match")
		}
	}
	r.nextID++
	mv.ID = r.nextID
	cp := *mv
	r.moves[mv.ID] = &cp
	return nil
}

func (r *fakeMoveRepo) Get(_ context.Context, id int64) (*domain.Move, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mv, ok := r.moves[id]
	if !ok {
		return nil, nil
	}
	cp := *mv
	return &cp, nil
}

func (r *fakeMoveRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.moves[id]; !ok {
		return domain.E(domain.KindNotFound, "move not found")
	}
	delete(r.moves, id)
	return nil
}

func (r *fakeMoveRepo) AllForPlayer(_ context.Context, playerID int64) ([]*domain.Move, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Move
	for _, mv := range r.moves {
		if mv.PlayerID == playerID {
			cp := *mv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMoveRepo) forMatch(matchID int64) []*domain.Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Move
	for _, mv := range r.moves {
		if mv.MatchID == matchID {
			cp := *mv
			out = append(out, &cp)
		}
	}
	return out
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == name || u.Email == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return domain.E(domain.KindNotFound, "user not found")
	}
	for id, other := range r.users {
		if id != u.ID && (other.Username == u.Username || other.Email == u.Email) {
			return domain.E(domain.KindBadInput, "username or email already taken")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, _ string, _ int) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*domain.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*domain.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, userID, deviceID int64, ttl time.Duration) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.DeviceID == deviceID {
			t.Revoked = true
		}
	}
	r.nextID++
	t := &domain.RefreshToken{
		ID:        "token-" + string(rune('a'+r.nextID)),
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: time.Now().Add(ttl),
	}
	r.tokens[t.ID] = t
	cp := *t
	return &cp, nil
}

func (r *fakeRefreshTokenRepo) Get(_ context.Context, id string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, userID, deviceID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.DeviceID == deviceID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAll(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

type fakeStatsRepo struct {
	mu      sync.Mutex
	records map[int64][]domain.WinStatus

	failRecord error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{records: map[int64][]domain.WinStatus{}}
}

func (r *fakeStatsRepo) Record(_ context.Context, userID int64, result domain.WinStatus) error {
	if r.failRecord != nil {
		return r.failRecord
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[userID] = append(r.records[userID], result)
	return nil
}

func (r *fakeStatsRepo) recorded(userID int64) []domain.WinStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[userID]
}

// fakeBlobStore keeps blobs in memory and remembers every ref it has ever
// stored, so tests can check compensation cleaned up.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string

	stored  []string
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (b *fakeBlobStore) Store(_ context.Context, ref, contentType string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[ref] = append([]byte(nil), data...)
	b.types[ref] = contentType
	b.stored = append(b.stored, ref)
	return nil
}

func (b *fakeBlobStore) Read(_ context.Context, ref string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[ref]
	if !ok {
		return nil, "", domain.E(domain.KindNotFound, "image not found")
	}
	return append([]byte(nil), data...), b.types[ref], nil
}

func (b *fakeBlobStore) Delete(_ context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[ref]; !ok {
		return domain.E(domain.KindNotFound, "image not found")
	}
	delete(b.blobs, ref)
	b.deleted = append(b.deleted, ref)
	return nil
}

func (b *fakeBlobStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// fakeClassifier pops scripted verdicts in order, defaulting to rock.
type fakeClassifier struct {
	mu        sync.Mutex
	verdicts  []domain.Gesture
	err       error
	calls     int
	feedbacks int
}

func (c *fakeClassifier) Classify(_ context.Context, _, _ string, _ []byte) (domain.Gesture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if len(c.verdicts) == 0 {
		return domain.GestureRock, nil
	}
	v := c.verdicts[0]
	if len(c.verdicts) > 1 {
		c.verdicts = c.verdicts[1:]
	}
	return v, nil
}

func (c *fakeClassifier) Feedback(_ context.Context, _ int64, _ bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedbacks++
	return c.err
}

var errBoom = errors.New("boom")
