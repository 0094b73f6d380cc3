package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"socialapi/config"
	"socialapi/database"
	"socialapi/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sendTimeout = 5 * time.Second

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

type Subscriptions interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Notifier delivers web push messages to the single subscription a user keeps.
type Notifier struct {
	subs   Subscriptions
	vapid  config.VAPID
	log    *logrus.Logger
	client webpush.HTTPClient
	ttl    int
}

func NewNotifier(subs Subscriptions, vapid config.VAPID, log *logrus.Logger) *Notifier {
	return &Notifier{
		subs:   subs,
		vapid:  vapid,
		log:    log,
		client: &http.Client{Timeout: sendTimeout},
		ttl:    60,
	}
}

func (n *Notifier) PublicKey() string {
	return n.vapid.PublicKey
}

// Notify sends in the background; failures are only logged.
func (n *Notifier) Notify(userID primitive.ObjectID, msg Notification) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.log.WithField("panic", r).Error("push notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.Send(ctx, userID, msg); err != nil {
			n.log.WithError(err).WithField("user", userID.Hex()).Warn("push notification failed")
		}
	}()
}

// Send delivers one notification synchronously. A user without a
// subscription is not an error. Subscriptions the push service reports as
// gone are removed.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, msg Notification) error {
	sub, err := n.subs.FindByUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      n.client,
		Subscriber:      n.vapid.Subscriber,
		VAPIDPublicKey:  n.vapid.PublicKey,
		VAPIDPrivateKey: n.vapid.PrivateKey,
		TTL:             n.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		n.log.WithField("user", userID.Hex()).Info("push subscription expired, removing")
		return n.subs.DeleteByUser(ctx, userID)
	}
	if resp.StatusCode >= 400 {
		return errors.New("push service responded " + resp.Status)
	}
	return nil
}
