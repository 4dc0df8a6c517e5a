package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"eventhub/internal/connpool"
)

// serverSelectionTimeout keeps operations from waiting on an unreachable
// deployment; they fail instead of queuing.
const serverSelectionTimeout = 5 * time.Second

// Dial connects to uri and pings the primary. It is the connpool.DialFunc
// for MongoDB.
func Dial(ctx context.Context, uri string) (*mongo.Client, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cs.String()).
		SetConnectTimeout(connpool.DefaultDialTimeout).
		SetServerSelectionTimeout(serverSelectionTimeout))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return client, nil
}

// Disconnect is the connpool.CloseFunc for MongoDB.
func Disconnect(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// Ping is the connpool.PingFunc for MongoDB.
func Ping(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, readpref.Primary())
}

// NewCache returns a connection cache for uri wired with Dial, Disconnect and Ping.
func NewCache(uri string, opts ...connpool.Option[*mongo.Client]) *connpool.Cache[*mongo.Client] {
	opts = append([]connpool.Option[*mongo.Client]{
		connpool.WithCloser(Disconnect),
		connpool.WithPinger(Ping),
	}, opts...)
	return connpool.New("mongodb", uri, Dial, opts...)
}

// DatabaseName returns the database named in uri, or fallback when the uri
// names none or cannot be parsed.
func DatabaseName(uri, fallback string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return fallback
	}
	return cs.Database
}

// DatabaseProvider hands out the database used by the repositories.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

type cachedDatabase struct {
	cache *connpool.Cache[*mongo.Client]
	name  string
}

// NewDatabaseProvider returns a provider that resolves the named database
// on the cached client, connecting on first use.
func NewDatabaseProvider(cache *connpool.Cache[*mongo.Client], name string) DatabaseProvider {
	return &cachedDatabase{cache: cache, name: name}
}

func (p *cachedDatabase) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := p.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(p.name), nil
}
