package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/complyviz/complyviz/pkg/rulebase"
)

// Collection names within the rule-base database.
const (
	collRules      = "rules"
	collGroups     = "country_groups"
	collDictionary = "dictionary"
)

// MongoConfig configures the MongoDB store backend.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore persists the rule base in MongoDB, one collection per record
// type. Records use their ID as the document _id, so upserts and deletes
// are single-key operations.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	source string
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		source: "mongo:" + cfg.Database,
	}, nil
}

// LoadGraph reads all three collections and materializes the domain graph.
func (s *MongoStore) LoadGraph(ctx context.Context) (rulebase.Document, error) {
	var rules []Rule
	if err := s.findAll(ctx, collRules, &rules); err != nil {
		return rulebase.Document{}, fmt.Errorf("load rules: %w", err)
	}
	var groups []CountryGroup
	if err := s.findAll(ctx, collGroups, &groups); err != nil {
		return rulebase.Document{}, fmt.Errorf("load groups: %w", err)
	}
	var entries []DictionaryEntry
	if err := s.findAll(ctx, collDictionary, &entries); err != nil {
		return rulebase.Document{}, fmt.Errorf("load dictionary: %w", err)
	}
	return BuildDocument(rules, groups, entries), nil
}

func (s *MongoStore) findAll(ctx context.Context, coll string, out any) error {
	cur, err := s.db.Collection(coll).Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// CreateRule inserts a new rule, assigning an ID when absent.
func (s *MongoStore) CreateRule(ctx context.Context, r Rule) (Rule, error) {
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, err := s.db.Collection(collRules).InsertOne(ctx, r); err != nil {
		return Rule{}, fmt.Errorf("insert rule: %w", err)
	}
	return r, nil
}

// UpdateRule replaces an existing rule.
func (s *MongoStore) UpdateRule(ctx context.Context, r Rule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	return s.replaceByID(ctx, collRules, r.ID, r)
}

// DeleteRule removes a rule.
func (s *MongoStore) DeleteRule(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collRules, id)
}

// CreateGroup inserts a new country group, assigning an ID when absent.
func (s *MongoStore) CreateGroup(ctx context.Context, g CountryGroup) (CountryGroup, error) {
	if err := validateGroup(g); err != nil {
		return CountryGroup{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if _, err := s.db.Collection(collGroups).InsertOne(ctx, g); err != nil {
		return CountryGroup{}, fmt.Errorf("insert group: %w", err)
	}
	return g, nil
}

// UpdateGroup replaces an existing country group.
func (s *MongoStore) UpdateGroup(ctx context.Context, g CountryGroup) error {
	if err := validateGroup(g); err != nil {
		return err
	}
	return s.replaceByID(ctx, collGroups, g.ID, g)
}

// DeleteGroup removes a country group.
func (s *MongoStore) DeleteGroup(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collGroups, id)
}

// CreateEntry inserts a new dictionary entry, assigning an ID when absent.
func (s *MongoStore) CreateEntry(ctx context.Context, e DictionaryEntry) (DictionaryEntry, error) {
	if err := validateEntry(e); err != nil {
		return DictionaryEntry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, err := s.db.Collection(collDictionary).InsertOne(ctx, e); err != nil {
		return DictionaryEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces an existing dictionary entry.
func (s *MongoStore) UpdateEntry(ctx context.Context, e DictionaryEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	return s.replaceByID(ctx, collDictionary, e.ID, e)
}

// DeleteEntry removes a dictionary entry.
func (s *MongoStore) DeleteEntry(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collDictionary, id)
}

func (s *MongoStore) replaceByID(ctx context.Context, coll, id string, doc any) error {
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", coll, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", coll, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll, id string) error {
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s/%s: %w", coll, id, ErrNotFound)
		}
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", coll, id, ErrNotFound)
	}
	return nil
}

// Source identifies the backend for cache keying.
func (s *MongoStore) Source() string { return s.source }

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
