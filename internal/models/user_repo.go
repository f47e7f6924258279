package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/talentfolio/server/internal/apperror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Names of the user document's array fields, shared between the resolvers
// and the repository so update paths stay in one place.
const (
	FieldSkills          = "skills"
	FieldCertifications  = "certifications"
	FieldExperienceItems = "experienceItems"
	FieldEducationItems  = "educationItems"
)

// itemLabels provides the human-readable noun for each embedded collection,
// used in not-found messages so a missing item reads differently from a
// missing user.
var itemLabels = map[string]string{
	FieldExperienceItems: "experience",
	FieldEducationItems:  "education",
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SearchUsers(ctx context.Context, term string) ([]*User, error)

	ApplyProfileUpdate(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (*User, error)
	ApplyArrayUpdates(ctx context.Context, id primitive.ObjectID, adds, pulls map[string][]string) (*User, error)

	AppendItem(ctx context.Context, id primitive.ObjectID, field string, item any) (*User, error)
	UpdateItem(ctx context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID, set bson.M) (*User, error)
	DeleteItem(ctx context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID) (*User, error)

	SetAvatar(ctx context.Context, id primitive.ObjectID, url, storageID string) (*User, error)

	EnsureIndexes(ctx context.Context) error
}

// legacy plain-text fallbacks stay out of default reads
var defaultReadProjection = bson.M{"education": 0, "experience": 0}

func (mdb *MongodbRepo) usersCollection(ctx context.Context) (*mongo.Collection, error) {
	return mdb.GetCollection(ctx, DBName, UsersColName)
}

func storageErr(op string, err error) error {
	return apperror.New(apperror.Storage, fmt.Sprintf("failed to %s", op), err)
}

// EnsureIndexes creates the unique indexes backing username and email
// uniqueness. The pre-insert lookups in the service are only a courtesy
// check; these indexes are what makes a concurrent duplicate signup lose
// with a duplicate-key error instead of a second document.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("username_unique"),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("email_unique"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating user indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("create user", err)
	}

	user.BeforeCreate()
	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Conflictf("user already exists")
		}
		return nil, storageErr("create user", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) findOne(ctx context.Context, filter bson.M, projected bool) (*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("find user", err)
	}

	opts := options.FindOne()
	if projected {
		opts.SetProjection(defaultReadProjection)
	}

	var user User
	if err := col.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFoundf("user not found")
		}
		return nil, storageErr("find user", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findOne(ctx, bson.M{"_id": id}, true)
}

// FindByUsername returns the full document including the credential hash;
// it exists for the login path. Every outward read goes through the
// projection instead.
func (mdb *MongodbRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	return mdb.findOne(ctx, bson.M{"username": username}, false)
}

func (mdb *MongodbRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findOne(ctx, bson.M{"email": email}, false)
}

func (mdb *MongodbRepo) findMany(ctx context.Context, filter bson.M) ([]*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("list users", err)
	}

	projection := bson.M{"password": 0}
	for k, v := range defaultReadProjection {
		projection[k] = v
	}
	cursor, err := col.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, storageErr("list users", err)
	}
	defer cursor.Close(ctx)

	users := []*User{}
	for cursor.Next(ctx) {
		var user User
		if err := cursor.Decode(&user); err != nil {
			return nil, storageErr("decode user", err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func (mdb *MongodbRepo) ListUsers(ctx context.Context) ([]*User, error) {
	return mdb.findMany(ctx, bson.M{})
}

// SearchUsers does a case-insensitive substring match over username and
// email. The term is quoted so user input can't smuggle regex syntax in.
func (mdb *MongodbRepo) SearchUsers(ctx context.Context, term string) ([]*User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return mdb.findMany(ctx, bson.M{
		"$or": []bson.M{
			{"username": pattern},
			{"email": pattern},
		},
	})
}

func (mdb *MongodbRepo) findAndApply(ctx context.Context, filter bson.M, update bson.M) (*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("update user", err)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(defaultReadProjection)

	var user User
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFoundf("user not found")
		}
		return nil, storageErr("update user", err)
	}
	return &user, nil
}

// ApplyProfileUpdate issues the resolved $set/$unset mutation atomically and
// returns the fresh document. Each field change is independent; the store
// applies them in a single document write.
func (mdb *MongodbRepo) ApplyProfileUpdate(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (*User, error) {
	setDoc := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		setDoc[k] = v
	}
	update := bson.M{"$set": setDoc}
	if len(unset) > 0 {
		unsetDoc := bson.M{}
		for _, k := range unset {
			unsetDoc[k] = ""
		}
		update["$unset"] = unsetDoc
	}

	return mdb.findAndApply(ctx, bson.M{"_id": id}, update)
}

// ApplyArrayUpdates runs the adds first and the pulls second. Mongo rejects
// $addToSet and $pull on the same path within one update document, and the
// two-step order is also what makes "remove wins" hold when a value shows
// up on both sides.
func (mdb *MongodbRepo) ApplyArrayUpdates(ctx context.Context, id primitive.ObjectID, adds, pulls map[string][]string) (*User, error) {
	filter := bson.M{"_id": id}

	var user *User
	var err error

	if len(adds) > 0 {
		addDoc := bson.M{}
		for field, values := range adds {
			addDoc[field] = bson.M{"$each": values}
		}
		user, err = mdb.findAndApply(ctx, filter, bson.M{
			"$addToSet": addDoc,
			"$set":      bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			return nil, err
		}
	}

	if len(pulls) > 0 {
		pullDoc := bson.M{}
		for field, values := range pulls {
			pullDoc[field] = bson.M{"$in": values}
		}
		user, err = mdb.findAndApply(ctx, filter, bson.M{
			"$pull": pullDoc,
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			return nil, err
		}
	}

	if user == nil {
		return nil, apperror.Validationf("no array changes provided")
	}
	return user, nil
}

// AppendItem pushes a new entry onto the end of an embedded collection.
func (mdb *MongodbRepo) AppendItem(ctx context.Context, id primitive.ObjectID, field string, item any) (*User, error) {
	return mdb.findAndApply(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: item},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// itemNotFound reports whether the parent exists, so a missing item is
// distinguishable from a missing user.
func (mdb *MongodbRepo) itemNotFound(ctx context.Context, id primitive.ObjectID, field string) error {
	if _, err := mdb.FindByID(ctx, id); err != nil {
		return err
	}
	return apperror.NotFoundf("%s not found", itemLabels[field])
}

// UpdateItem changes only the submitted fields of one embedded entry,
// addressed by its stable id through the positional operator. Remaining
// items keep their order.
func (mdb *MongodbRepo) UpdateItem(ctx context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID, set bson.M) (*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("update item", err)
	}

	setDoc := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		setDoc[k] = v
	}
	filter := bson.M{"_id": id, field + "._id": itemID}

	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": setDoc})
	if err != nil {
		return nil, storageErr("update item", err)
	}
	if res.MatchedCount == 0 {
		return nil, mdb.itemNotFound(ctx, id, field)
	}

	return mdb.FindByID(ctx, id)
}

// DeleteItem removes one embedded entry by id. Deleting an id that is
// already gone reports not-found and leaves the collection untouched.
func (mdb *MongodbRepo) DeleteItem(ctx context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID) (*User, error) {
	col, err := mdb.usersCollection(ctx)
	if err != nil {
		return nil, storageErr("delete item", err)
	}

	filter := bson.M{"_id": id, field + "._id": itemID}
	update := bson.M{
		"$pull": bson.M{field: bson.M{"_id": itemID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, storageErr("delete item", err)
	}
	if res.MatchedCount == 0 {
		return nil, mdb.itemNotFound(ctx, id, field)
	}

	return mdb.FindByID(ctx, id)
}

func (mdb *MongodbRepo) SetAvatar(ctx context.Context, id primitive.ObjectID, url, storageID string) (*User, error) {
	return mdb.findAndApply(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"avatarUrl": url,
			"avatarId":  storageID,
			"updatedAt": time.Now(),
		},
	})
}
