package handlers_test

import (
	"context"
	"io"
	"sort"
	"sync"

	"socialapi/database"
	"socialapi/models"
	"socialapi/push"
	"socialapi/storage"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]models.User
	email map[string]primitive.ObjectID
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]models.User{}, email: map[string]primitive.ObjectID{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return database.ErrDuplicateEmail
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.byID[u.ID] = *u
	m.email[u.Email] = u.ID
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.email[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	u := m.byID[id]
	return &u, nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) delete(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		delete(m.email, u.Email)
		delete(m.byID, id)
	}
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memProfiles struct {
	mu       sync.Mutex
	users    *memUsers
	profiles map[primitive.ObjectID]models.Profile
}

func newMemProfiles(users *memUsers) *memProfiles {
	return &memProfiles{users: users, profiles: map[primitive.ObjectID]models.Profile{}}
}

func (m *memProfiles) populate(p models.Profile) models.Profile {
	if u, err := m.users.FindByID(context.Background(), p.User); err == nil {
		p.Owner = &models.UserSummary{ID: u.ID, Name: u.Name, SecondName: u.SecondName, Avatar: u.Avatar}
	}
	return p
}

func (m *memProfiles) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	p = m.populate(p)
	return &p, nil
}

func (m *memProfiles) List(_ context.Context) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Profile{}
	for _, p := range m.profiles {
		out = append(out, m.populate(p))
	}
	return out, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (m *memProfiles) Upsert(ctx context.Context, userID primitive.ObjectID, u models.ProfileUpdate) (*models.Profile, error) {
	m.mu.Lock()
	p, ok := m.profiles[userID]
	if !ok {
		p = models.Profile{ID: primitive.NewObjectID(), User: userID, Skills: []models.Skill{}, Education: []models.Education{}}
	}
	setIf(&p.Company, u.Company)
	setIf(&p.Website, u.Website)
	setIf(&p.Location, u.Location)
	setIf(&p.Status, u.Status)
	setIf(&p.Bio, u.Bio)
	setIf(&p.Social.Twitter, u.Social.Twitter)
	setIf(&p.Social.YouTube, u.Social.YouTube)
	setIf(&p.Contacts.Skype, u.Contacts.Skype)
	if u.Skills != nil {
		p.Skills = u.Skills
	}
	m.profiles[userID] = p
	m.mu.Unlock()
	return m.FindByUser(ctx, userID)
}

func (m *memProfiles) AddEducation(ctx context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error) {
	m.mu.Lock()
	p, ok := m.profiles[userID]
	if !ok {
		m.mu.Unlock()
		return nil, database.ErrNotFound
	}
	if edu.ID.IsZero() {
		edu.ID = primitive.NewObjectID()
	}
	p.Education = append([]models.Education{edu}, p.Education...)
	m.profiles[userID] = p
	m.mu.Unlock()
	return m.FindByUser(ctx, userID)
}

func (m *memProfiles) RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	m.mu.Lock()
	p, ok := m.profiles[userID]
	if !ok {
		m.mu.Unlock()
		return nil, database.ErrNotFound
	}
	kept := []models.Education{}
	for _, e := range p.Education {
		if e.ID != eduID {
			kept = append(kept, e)
		}
	}
	p.Education = kept
	m.profiles[userID] = p
	m.mu.Unlock()
	return m.FindByUser(ctx, userID)
}

type memPosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func newMemPosts() *memPosts {
	return &memPosts{posts: map[primitive.ObjectID]models.Post{}}
}

func (m *memPosts) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.posts[p.ID] = *p
	return nil
}

func (m *memPosts) List(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memPosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (m *memPosts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// mutate applies fn to a copy of the post and stores the result.
func (m *memPosts) mutate(id primitive.ObjectID, fn func(p *models.Post) error) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	if err := fn(&p); err != nil {
		return nil, err
	}
	m.posts[id] = p
	return &p, nil
}

func withoutUser(likes []models.Like, userID primitive.ObjectID) []models.Like {
	out := []models.Like{}
	for _, l := range likes {
		if l.User != userID {
			out = append(out, l)
		}
	}
	return out
}

func (m *memPosts) Like(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		if p.LikedBy(userID) {
			return database.ErrAlreadyLiked
		}
		p.Likes = append(p.Likes, models.NewLike(userID))
		return nil
	})
}

func (m *memPosts) Unlike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		p.Likes = withoutUser(p.Likes, userID)
		return nil
	})
}

func (m *memPosts) AddComment(_ context.Context, postID primitive.ObjectID, c models.Comment) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		p.Comments = append([]models.Comment{c}, p.Comments...)
		return nil
	})
}

func (m *memPosts) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		if p.Comment(commentID) == nil {
			return database.ErrCommentNotFound
		}
		kept := []models.Comment{}
		for _, c := range p.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		p.Comments = kept
		return nil
	})
}

func (m *memPosts) LikeComment(_ context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		c := p.Comment(commentID)
		if c == nil {
			return database.ErrCommentNotFound
		}
		if c.LikedBy(userID) {
			return database.ErrAlreadyLiked
		}
		c.Likes = append([]models.Like{models.NewLike(userID)}, c.Likes...)
		return nil
	})
}

func (m *memPosts) UnlikeComment(_ context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error) {
	return m.mutate(postID, func(p *models.Post) error {
		c := p.Comment(commentID)
		if c == nil {
			return database.ErrCommentNotFound
		}
		c.Likes = withoutUser(c.Likes, userID)
		return nil
	})
}

func (m *memPosts) deleteByUser(userID primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.posts {
		if p.User == userID {
			delete(m.posts, id)
		}
	}
}

type memMedia struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Media
}

func newMemMedia() *memMedia {
	return &memMedia{items: map[primitive.ObjectID]models.Media{}}
}

func (m *memMedia) Create(_ context.Context, media *models.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if media.ID.IsZero() {
		media.ID = primitive.NewObjectID()
	}
	m.items[media.ID] = *media
	return nil
}

func (m *memMedia) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Media{}
	for _, item := range m.items {
		if item.User == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memMedia) FindByID(_ context.Context, id primitive.ObjectID) (*models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &item, nil
}

func (m *memMedia) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memSubs struct {
	mu   sync.Mutex
	subs map[primitive.ObjectID]models.PushSubscription
}

func (m *memSubs) Upsert(_ context.Context, sub models.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.User] = sub
	return nil
}

// memAccounts mirrors the cascade order of the real repository.
type memAccounts struct {
	users    *memUsers
	profiles *memProfiles
	posts    *memPosts
	media    *memMedia
	subs     *memSubs
}

func (a *memAccounts) Delete(ctx context.Context, userID primitive.ObjectID) ([]models.Media, error) {
	media, _ := a.media.ListByUser(ctx, userID)
	a.posts.deleteByUser(userID)
	for _, item := range media {
		_ = a.media.Delete(ctx, item.ID)
	}
	a.subs.mu.Lock()
	delete(a.subs.subs, userID)
	a.subs.mu.Unlock()
	a.profiles.mu.Lock()
	delete(a.profiles.profiles, userID)
	a.profiles.mu.Unlock()
	a.users.delete(userID)
	return media, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func (s *memStorage) Upload(_ context.Context, owner string, file io.Reader, _ int64, _ string) (storage.Object, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return storage.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := "media/" + owner + "/" + primitive.NewObjectID().Hex()
	s.objects[key] = data
	return storage.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(userID primitive.ObjectID, msg push.Notification) {
	m.Called(userID, msg)
}

func (m *mockNotifier) PublicKey() string {
	return m.Called().String(0)
}

type feedRecorder struct {
	mu     sync.Mutex
	events []string
}

func (f *feedRecorder) Broadcast(eventType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}
