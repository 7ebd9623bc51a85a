package main

import (
	"context"
	"log"
	"os"

	"rps_api/internal/db"
	"rps_api/internal/domain"
	"rps_api/internal/repository"
	"rps_api/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// Creates (or reuses) a local test account and prints an access token for it.
func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	username := "testuser"
	password := "testpassword"

	u, err := repo.GetByUsernameOrEmail(ctx, username)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	if u != nil {
		log.Printf("user already exists id=%d\n", u.ID)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password failed: %v", err)
		}
		u = &domain.User{
			Username:     username,
			Email:        "testuser@example.com",
			PasswordHash: string(hash),
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d password=%s\n", u.ID, password)
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
