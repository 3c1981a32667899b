// Command create-admin provisions an administrator account in PostgreSQL.
//
//	go run ./cmd/create-admin -username alice -email alice@agora.social
//
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/agora-backend/internal/config"
	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/AnshRaj112/agora-backend/pkg/logger"
	"github.com/AnshRaj112/agora-backend/pkg/utils"
)

func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	password := os.Getenv("ADMIN_PASSWORD")
	if *username == "" || *email == "" || len(password) < 12 {
		log.Fatal("username, email and an ADMIN_PASSWORD of at least 12 characters are required")
	}

	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.DisconnectPostgres()

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin, err := services.CreateAdmin(ctx, *username, *email, hash)
	if err != nil {
		log.Fatal("failed to create admin", zap.Error(err))
	}
	log.Info("admin created", zap.String("id", admin.ID.String()), zap.String("username", admin.Username))
}
