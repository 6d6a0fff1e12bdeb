package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

// memStore is an in-memory stand-in for the Postgres repositories. It
// implements UserRepository, FollowRepository, PostRepository and
// RefreshTokenRepository with the same ordering and uniqueness rules.
type memStore struct {
	mu      sync.Mutex
	users   map[int64]*model.User
	follows map[[2]int64]time.Time
	posts   []model.Post
	tokens  map[string]*model.RefreshToken
	nextID  int64
	clock   time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[int64]*model.User),
		follows: make(map[[2]int64]time.Time),
		tokens:  make(map[string]*model.RefreshToken),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// tick advances the store clock by one second and returns it.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// addUser inserts a user directly, bypassing password hashing.
func (m *memStore) addUser(username, email string) *model.User {
	u := &model.User{Username: username, Email: email, PasswordHash: "x"}
	_ = (*memUsers)(m).Create(context.Background(), u)
	return u
}

// addPostAt inserts a post with an explicit timestamp.
func (m *memStore) addPostAt(userID int64, body string, at time.Time) model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Post{ID: m.id(), Body: body, UserID: userID, CreatedAt: at}
	m.posts = append(m.posts, p)
	return p
}

func (m *memStore) userRepo() *memUsers     { return (*memUsers)(m) }
func (m *memStore) followRepo() *memFollows { return (*memFollows)(m) }
func (m *memStore) postRepo() *memPosts     { return (*memPosts)(m) }
func (m *memStore) tokenRepo() *memTokens   { return (*memTokens)(m) }

// ---- users ----

type memUsers memStore

func (r *memUsers) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return model.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return model.ErrEmailExists
		}
	}
	m := (*memStore)(r)
	u.ID = m.id()
	u.CreatedAt = m.tick()
	u.LastSeen = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUsers) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUsers) UpdateProfile(ctx context.Context, userID int64, username string, aboutMe *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	for id, other := range r.users {
		if id != userID && other.Username == username {
			return model.ErrUsernameExists
		}
	}
	u.Username = username
	u.AboutMe = aboutMe
	return nil
}

func (r *memUsers) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUsers) TouchLastSeen(ctx context.Context, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok && at.After(u.LastSeen) {
		u.LastSeen = at
	}
	return nil
}

// ---- follows ----

type memFollows memStore

func (r *memFollows) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{followerID, followedID}
	if _, ok := r.follows[key]; ok {
		return false, nil
	}
	r.follows[key] = r.clock
	return true, nil
}

func (r *memFollows) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{followerID, followedID}
	_, ok := r.follows[key]
	delete(r.follows, key)
	return ok, nil
}

func (r *memFollows) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.follows[[2]int64{followerID, followedID}]
	return ok, nil
}

func (r *memFollows) CountFollowed(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.follows {
		if k[0] == userID {
			n++
		}
	}
	return n, nil
}

func (r *memFollows) CountFollowers(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.follows {
		if k[1] == userID {
			n++
		}
	}
	return n, nil
}

func (r *memFollows) GetFollowedIDs(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for k := range r.follows {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ---- posts ----

type memPosts memStore

func (r *memPosts) Create(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := (*memStore)(r)
	post.ID = m.id()
	post.CreatedAt = m.tick()
	r.posts = append(r.posts, *post)
	return nil
}

func (r *memPosts) list(match func(model.Post) bool, offset, limit int) []model.FeedRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []model.FeedRow
	for _, p := range r.posts {
		if !match(p) {
			continue
		}
		author := r.users[p.UserID]
		rows = append(rows, model.FeedRow{Post: p, AuthorUsername: author.Username, AuthorEmail: author.Email})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if offset >= len(rows) {
		return []model.FeedRow{}
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (r *memPosts) ListByAuthors(ctx context.Context, q sqlx.QueryerContext, authorIDs []int64, offset, limit int) ([]model.FeedRow, error) {
	set := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		set[id] = true
	}
	return r.list(func(p model.Post) bool { return set[p.UserID] }, offset, limit), nil
}

func (r *memPosts) ListAll(ctx context.Context, offset, limit int) ([]model.FeedRow, error) {
	return r.list(func(model.Post) bool { return true }, offset, limit), nil
}

// ---- refresh tokens ----

type memTokens memStore

func (r *memTokens) Create(ctx context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := (*memStore)(r)
	token.ID = "tok-" + strconv.FormatInt(m.id(), 10)
	token.CreatedAt = m.clock
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *memTokens) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, model.ErrRefreshTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTokens) Revoke(ctx context.Context, id string, replacedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id && t.RevokedAt == nil {
			now := r.clock
			t.RevokedAt = &now
			t.ReplacedBy = replacedBy
		}
	}
	return nil
}

func (r *memTokens) RevokeAllForUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := r.clock
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *memTokens) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

// fakeTx runs fn without a real transaction; memStore repos ignore tx.
type fakeTx struct {
	readOnlyCalls int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *fakeTx) ReadOnly(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.readOnlyCalls++
	return fn(nil)
}
