package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const accountsCollection = "accounts"

// MongoAccountStore implements AccountStore on a MongoDB collection.
type MongoAccountStore struct {
	coll *mongo.Collection
}

type accountDoc struct {
	ID              string     `bson:"_id"`
	Name            string     `bson:"name"`
	Email           string     `bson:"email"`
	Role            string     `bson:"role"`
	OTPSecret       string     `bson:"otp_secret,omitempty"`
	SecretExpiresAt *time.Time `bson:"secret_expires_at,omitempty"`
}

// NewMongoAccountStore creates an account store on the given database.
func NewMongoAccountStore(db *mongo.Database) *MongoAccountStore {
	return &MongoAccountStore{coll: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the unique email index.
func (s *MongoAccountStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByEmail performs an exact, case-sensitive match. Anything other
// than exactly one matching document resolves to ErrAccountNotFound, so
// a duplicated address can never log in.
func (s *MongoAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"email": email}, options.Find().SetLimit(2))
	if err != nil {
		return nil, err
	}

	var docs []accountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, ErrAccountNotFound
	}

	return docs[0].toAccount()
}

// AttachChallenge replaces the account's challenge fields.
func (s *MongoAccountStore) AttachChallenge(ctx context.Context, accountID uuid.UUID, challenge Challenge) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": accountID.String()},
		bson.M{"$set": bson.M{
			"otp_secret":        challenge.Secret,
			"secret_expires_at": challenge.ExpiresAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ClearChallenge removes both challenge fields. Clearing an account
// that has no challenge succeeds without effect.
func (s *MongoAccountStore) ClearChallenge(ctx context.Context, accountID uuid.UUID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": accountID.String()},
		bson.M{"$unset": bson.M{
			"otp_secret":        "",
			"secret_expires_at": "",
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (d accountDoc) toAccount() (*Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.Join(ErrAccountNotFound, err)
	}

	acc := &Account{
		ID:    id,
		Name:  d.Name,
		Email: d.Email,
		Role:  Role(d.Role),
	}
	if d.OTPSecret != "" && d.SecretExpiresAt != nil {
		acc.Challenge = &Challenge{
			Secret:    d.OTPSecret,
			ExpiresAt: *d.SecretExpiresAt,
		}
	}
	return acc, nil
}
