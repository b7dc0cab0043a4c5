package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/account-api/internal/model"
)

// AccountRepository defines the interface for account-related database
// operations. Email and username lookups are case-insensitive; values are
// lowercased before querying.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountByEmailOrUsername(ctx context.Context, identifier string) (*model.Account, error)
	GetAccountByVerificationTokenHash(ctx context.Context, hash string) (*model.Account, error)
	GetAccountByResetTokenHash(ctx context.Context, hash string) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, params FilterAccountsParams) ([]*model.Account, error)
}

// FilterAccountsParams defines the parameters for filtering and paginating
// accounts.
type FilterAccountsParams struct {
	Status   *model.AccountStatus
	Role     *string
	Limit    uint64
	Offset   uint64
	SortBy   *string
	SortDesc bool
}

// ErrAccountNotFound is returned when no account matches the query.
var ErrAccountNotFound = errors.New("account not found")

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

// NewAccountMongoRepository creates a MongoDB-backed account repository and
// ensures the unique indexes on email and username exist.
func NewAccountMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AccountRepository {
	collection := db.Collection(accountCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{db: db}
}

func (r *accountMongoRepository) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	account.Normalize()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.db.Collection(accountCollection).InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return account, nil
}

func (r *accountMongoRepository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *accountMongoRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *accountMongoRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"username": strings.ToLower(username)})
}

func (r *accountMongoRepository) GetAccountByEmailOrUsername(
	ctx context.Context,
	identifier string,
) (*model.Account, error) {
	identifier = strings.ToLower(identifier)

	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}})
}

func (r *accountMongoRepository) GetAccountByVerificationTokenHash(
	ctx context.Context,
	hash string,
) (*model.Account, error) {
	return r.findOne(ctx, bson.M{
		"email_verification_token":  hash,
		"email_verification_expiry": bson.M{"$gt": time.Now()},
	})
}

func (r *accountMongoRepository) GetAccountByResetTokenHash(
	ctx context.Context,
	hash string,
) (*model.Account, error) {
	return r.findOne(ctx, bson.M{
		"reset_token":        hash,
		"reset_token_expiry": bson.M{"$gt": time.Now()},
	})
}

// UpdateAccount persists the whole document. The orchestrator mutates the
// account in memory and saves it as one unit; expired refresh tokens are
// pruned on every save.
func (r *accountMongoRepository) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	account.Normalize()
	account.PruneExpiredRefreshTokens(time.Now())
	account.UpdatedAt = time.Now()

	result := r.db.Collection(accountCollection).FindOneAndReplace(
		ctx,
		bson.M{"_id": account.ID},
		account,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Err()
	}

	var updated model.Account
	if err := result.Decode(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *accountMongoRepository) DeleteAccount(ctx context.Context, id string) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	result := r.db.Collection(accountCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) ListAccounts(
	ctx context.Context,
	params FilterAccountsParams,
) ([]*model.Account, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	sortBy := "created_at"
	if params.SortBy != nil {
		sortBy = *params.SortBy
	}

	sortOrder := -1
	if !params.SortDesc {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortBy, Value: sortOrder}})

	filter := bson.M{}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.Role != nil {
		filter["role"] = *params.Role
	}

	cursor, err := r.db.Collection(accountCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []*model.Account
	for cursor.Next(ctx) {
		var account model.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	result := r.db.Collection(accountCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}
