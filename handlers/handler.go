package handlers

import (
	"context"
	"io"
	"sync"
	"time"

	"socialapi/models"
	"socialapi/push"
	"socialapi/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Profiles interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, userID primitive.ObjectID, u models.ProfileUpdate) (*models.Profile, error)
	AddEducation(ctx context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error)
}

type Posts interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error)
	LikeComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error)
	UnlikeComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (*models.Post, error)
}

type MediaStore interface {
	Create(ctx context.Context, media *models.Media) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Media, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Media, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Accounts interface {
	Delete(ctx context.Context, userID primitive.ObjectID) ([]models.Media, error)
}

type Subscriptions interface {
	Upsert(ctx context.Context, sub models.PushSubscription) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Notifier interface {
	Notify(userID primitive.ObjectID, msg push.Notification)
	PublicKey() string
}

type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// HealthChecker is satisfied by the database store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Users         Users
	Profiles      Profiles
	Posts         Posts
	Media         MediaStore
	Accounts      Accounts
	Subscriptions Subscriptions
	Tokens        TokenIssuer
	Storage       storage.Uploader
	Notifier      Notifier
	Feed          Broadcaster
	Health        HealthChecker
	Log           *logrus.Logger

	RequestTimeout time.Duration
	MaxUploadSize  int64
	BcryptCost     int
}

type Handler struct {
	users         Users
	profiles      Profiles
	posts         Posts
	media         MediaStore
	accounts      Accounts
	subscriptions Subscriptions
	tokens        TokenIssuer
	storage       storage.Uploader
	notifier      Notifier
	feed          Broadcaster
	health        HealthChecker
	log           *logrus.Logger

	timeout       time.Duration
	maxUploadSize int64
	bcryptCost    int

	dummyOnce sync.Once
	dummyHash []byte
}

func New(d Deps) *Handler {
	h := &Handler{
		users:         d.Users,
		profiles:      d.Profiles,
		posts:         d.Posts,
		media:         d.Media,
		accounts:      d.Accounts,
		subscriptions: d.Subscriptions,
		tokens:        d.Tokens,
		storage:       d.Storage,
		notifier:      d.Notifier,
		feed:          d.Feed,
		health:        d.Health,
		log:           d.Log,
		timeout:       d.RequestTimeout,
		maxUploadSize: d.MaxUploadSize,
		bcryptCost:    d.BcryptCost,
	}

	if h.log == nil {
		h.log = logrus.New()
		h.log.SetOutput(io.Discard)
	}
	if h.timeout <= 0 {
		h.timeout = 10 * time.Second
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = 10 << 20
	}
	if h.bcryptCost == 0 {
		h.bcryptCost = 10
	}
	return h
}
