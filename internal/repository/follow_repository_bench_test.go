package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/testutil"
)

func BenchmarkFollowWrite(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	users := make([]model.User, 1000)
	for i := range users {
		users[i] = model.User{ID: fmt.Sprintf("u%04d", i), Username: fmt.Sprintf("u%04d", i), Email: fmt.Sprintf("u%04d@example.com", i), PasswordHash: "p"}
	}
	if err := db.Create(&users).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rnd.Intn(len(users))].ID
		to := users[rnd.Intn(len(users))].ID
		if from == to {
			continue
		}
		_, _ = followRepo.Create(ctx, from, to, time.Now().UTC())
	}
}

func BenchmarkQueryFollowersAndFollowing(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	// u0 有 N 个粉丝，同时也关注这 N 个人
	const N = 5000
	now := time.Now().UTC()
	for i := 1; i <= N; i++ {
		uid := fmt.Sprintf("u%v", i)
		_ = db.Create(&model.User{ID: uid, Username: uid, Email: uid + "@example.com", PasswordHash: "p"}).Error
		_, _ = followRepo.Create(ctx, uid, "u0", now)
		_, _ = followRepo.Create(ctx, "u0", uid, now)
	}

	b.ResetTimer()
	b.Run("FollowerIDs+FindByIDs", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ids, _ := followRepo.FollowerIDs(ctx, "u0", nil)
			_, _ = userRepo.FindByIDs(ctx, ids)
		}
	})

	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowers(ctx, "u0", nil, 50)
		}
	})

	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, "u0", nil, 50)
		}
	})
}
