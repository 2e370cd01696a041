package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const sessionsCollection = "sessions"

// MongoStore persists sessions in a MongoDB collection keyed by token.
type MongoStore struct {
	coll *mongo.Collection
}

type sessionDoc struct {
	ID             string         `bson:"_id"`
	Token          string         `bson:"token"`
	UserID         string         `bson:"user_id,omitempty"`
	Data           map[string]any `bson:"data,omitempty"`
	ExpiresAt      time.Time      `bson:"expires_at"`
	LastActivityAt time.Time      `bson:"last_activity_at"`
	CreatedAt      time.Time      `bson:"created_at"`
}

// NewMongoStore creates a session store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(sessionsCollection)}
}

// EnsureIndexes creates the token and expiry indexes. The expiry index
// is a TTL index so MongoDB reaps expired sessions on its own.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Save upserts a session document keyed by the session ID
func (s *MongoStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	doc := sessionDoc{
		ID:             sess.ID.String(),
		Token:          sess.Token,
		Data:           sess.Data,
		ExpiresAt:      sess.ExpiresAt,
		LastActivityAt: sess.LastActivityAt,
		CreatedAt:      sess.CreatedAt,
	}
	if sess.UserID != nil {
		doc.UserID = sess.UserID.String()
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Get retrieves a session by token
func (s *MongoStore) Get(ctx context.Context, token string) (*Session, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	sess, err := doc.toSession()
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Delete removes a session by token
func (s *MongoStore) Delete(ctx context.Context, token string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DeleteExpired removes sessions past their expiry. The TTL index does
// this too, but with up to a minute of lag.
func (s *MongoStore) DeleteExpired(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	return err
}

func (d sessionDoc) toSession() (*Session, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	sess := &Session{
		ID:             id,
		Token:          d.Token,
		Data:           d.Data,
		ExpiresAt:      d.ExpiresAt,
		LastActivityAt: d.LastActivityAt,
		CreatedAt:      d.CreatedAt,
	}
	if d.UserID != "" {
		uid, err := uuid.Parse(d.UserID)
		if err != nil {
			return nil, errors.Join(ErrInvalidSession, err)
		}
		sess.UserID = &uid
	}
	return sess, nil
}
