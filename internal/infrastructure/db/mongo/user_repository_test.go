package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

func newMockTest(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserRepository_Create(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		created, err := repo.Create(context.Background(), &domain.User{
			Username:     "alice",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    time.Now(),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID == "" || created.Username != "alice" {
			t.Fatalf("unexpected user: %+v", created)
		}
		if _, err := primitive.ObjectIDFromHex(created.ID); err != nil {
			t.Fatalf("expected an ObjectID hex, got %q", created.ID)
		}
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.users index: username_1",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
		if !errors.Is(err, domain.ErrDuplicateUsername) {
			t.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    1,
			Message: "internal error",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "password_hash", Value: "$2a$10$hash"},
			{Key: "created_at", Value: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		}))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if u.ID != id.Hex() || u.Username != "alice" || u.PasswordHash != "$2a$10$hash" {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "internal error"}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByUsername(context.Background(), "alice")
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("a server error must not look like a missing user")
		}
	})
}
