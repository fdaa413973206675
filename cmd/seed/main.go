package main

import (
	"context"
	"log"
	"time"

	marketadapters "exchange_backend/internal/feature/market/adapters"
	"exchange_backend/internal/feature/market/adapters/static"
	"exchange_backend/internal/platform/cache"
	"exchange_backend/internal/platform/config"
	"exchange_backend/internal/platform/db"
	infraredis "exchange_backend/internal/platform/redis"

	redisv9 "github.com/redis/go-redis/v9"
)

// seed は組み込みのキャラクターデータをSQLのカタログテーブルへ書き込みます。
func main() {
	config.LoadDotEnv()

	dbCfg := db.LoadConfigFromEnv()
	dbCfg.Migrate = true
	gdb, err := db.OpenDB(dbCfg, &marketadapters.CharacterModel{})
	if err != nil {
		log.Fatal(err)
	}

	// Redis があればキャッシュも無効化する
	redisCfg := infraredis.LoadConfigFromEnv()
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(redisCfg); err == nil {
		rdb = tmp
		defer func() { _ = rdb.Close() }()
	}
	repo := cache.NewCachingCharacterRepository(rdb, 0, marketadapters.NewCharacterRepository(gdb), redisCfg.Namespace+":characters")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	chars, err := static.NewSource().LoadEntities(ctx)
	if err != nil {
		log.Fatal("failed to load characters:", err)
	}

	if err := repo.UpsertBatch(ctx, chars); err != nil {
		log.Fatal(err)
	}
	log.Printf("seed ok: %d characters", len(chars))
}
