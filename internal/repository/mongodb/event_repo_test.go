package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eventhub/internal/domain"
)

// staticDatabase serves a fixed database, standing in for the connection cache.
type staticDatabase struct {
	db  *mongo.Database
	err error
}

func (s staticDatabase) Database(ctx context.Context) (*mongo.Database, error) {
	return s.db, s.err
}

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func eventDoc(id primitive.ObjectID, title, slug string, tags ...string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "slug", Value: slug},
		{Key: "description", Value: "desc"},
		{Key: "overview", Value: "overview"},
		{Key: "image", Value: "https://cdn.example.com/a.png"},
		{Key: "venue", Value: "Hall A"},
		{Key: "location", Value: "Berlin"},
		{Key: "date", Value: "2024-05-15"},
		{Key: "time", Value: "09:30"},
		{Key: "mode", Value: "offline"},
		{Key: "audience", Value: "Developers"},
		{Key: "organizer", Value: "Gophers"},
		{Key: "agenda", Value: bson.A{"Keynote"}},
		{Key: "tags", Value: toBSONArray(tags)},
		{Key: "createdAt", Value: testTime},
		{Key: "updatedAt", Value: testTime},
	}
}

func toBSONArray(items []string) bson.A {
	out := bson.A{}
	for _, s := range items {
		out = append(out, s)
	}
	return out
}

func newEvent() *domain.Event {
	return &domain.Event{
		Title:     "React Conference 2024",
		Slug:      "react-conference-2024",
		Date:      "2024-05-15",
		Time:      "09:30",
		Agenda:    []string{"Keynote"},
		Tags:      []string{"react"},
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

func TestEventRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		e := newEvent()
		require.NoError(mt, repo.Create(context.Background(), e))
		_, err := primitive.ObjectIDFromHex(e.ID)
		require.NoError(mt, err)
	})

	mt.Run("duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.events index: slug_unique",
		}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		e := newEvent()
		err := repo.Create(context.Background(), e)
		require.ErrorIs(mt, err, domain.ErrDuplicateSlug)
		require.Empty(mt, e.ID)
	})

	mt.Run("connection unavailable", func(mt *mtest.T) {
		repo := NewEventRepository(staticDatabase{err: domain.ErrConnectionStringMissing})
		err := repo.Create(context.Background(), newEvent())
		require.ErrorIs(mt, err, domain.ErrConnectionStringMissing)
	})
}

func TestEventRepository_GetBySlug(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch,
			eventDoc(id, "React Conference 2024", "react-conference-2024", "react", "frontend")))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.GetBySlug(context.Background(), "react-conference-2024")
		require.NoError(mt, err)
		require.Equal(mt, id.Hex(), got.ID)
		require.Equal(mt, "React Conference 2024", got.Title)
		require.Equal(mt, "react-conference-2024", got.Slug)
		require.Equal(mt, []string{"Keynote"}, got.Agenda)
		require.Equal(mt, []string{"react", "frontend"}, got.Tags)
		require.True(mt, testTime.Equal(got.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.GetBySlug(context.Background(), "missing")
		require.ErrorIs(mt, err, domain.ErrNotFound)
		require.Nil(mt, got)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		_, err := repo.GetBySlug(context.Background(), "x")
		require.Error(mt, err)
		require.False(mt, errors.Is(err, domain.ErrNotFound))
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch,
			eventDoc(id, "Go Day", "go-day", "go")))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		require.Equal(mt, "go-day", got.Slug)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewEventRepository(staticDatabase{db: mt.DB})
		_, err := repo.GetByID(context.Background(), "not-an-object-id")
		require.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestEventRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("newest first as returned", func(mt *mtest.T) {
		newer, older := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch,
			eventDoc(newer, "Newer", "newer", "go"),
			eventDoc(older, "Older", "older", "go"),
		))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.List(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		require.Equal(mt, "newer", got[0].Slug)
		require.Equal(mt, "older", got[1].Slug)
	})

	mt.Run("empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.List(context.Background(), domain.PaginationParams{})
		require.NoError(mt, err)
		require.NotNil(mt, got)
		require.Empty(mt, got)
	})
}

func TestEventRepository_ListByTag(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch,
			eventDoc(primitive.NewObjectID(), "React Day", "react-day", "react", "frontend"),
		))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		got, err := repo.ListByTag(context.Background(), "react")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		require.Contains(mt, got[0].Tags, "react")
	})
}

func TestEventRepository_Count(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		n, err := repo.Count(context.Background())
		require.NoError(mt, err)
		require.Equal(mt, 3, n)
	})
}

func TestEventRepository_UpdateAndDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		e := newEvent()
		e.ID = primitive.NewObjectID().Hex()
		require.NoError(mt, repo.Update(context.Background(), e))
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		e := newEvent()
		e.ID = primitive.NewObjectID().Hex()
		require.ErrorIs(mt, repo.Update(context.Background(), e), domain.ErrNotFound)
	})

	mt.Run("update duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})

		e := newEvent()
		e.ID = primitive.NewObjectID().Hex()
		require.ErrorIs(mt, repo.Update(context.Background(), e), domain.ErrDuplicateSlug)
	})

	mt.Run("delete success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})
		require.NoError(mt, repo.Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))
		repo := NewEventRepository(staticDatabase{db: mt.DB})
		require.ErrorIs(mt, repo.Delete(context.Background(), primitive.NewObjectID().Hex()), domain.ErrNotFound)
	})
}

func TestEventRepository_EnsureSchema(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewEventRepository(staticDatabase{db: mt.DB})
		require.NoError(mt, repo.EnsureSchema(context.Background()))
	})
}

func TestDatabaseName(t *testing.T) {
	require.Equal(t, "devevent", DatabaseName("mongodb://localhost:27017/devevent", "fallback"))
	require.Equal(t, "fallback", DatabaseName("mongodb://localhost:27017", "fallback"))
	require.Equal(t, "fallback", DatabaseName("::not a uri::", "fallback"))
}
