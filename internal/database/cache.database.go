package database

import (
	"context"
	"fmt"
	"time"

	"cleanhub/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes. Each category lives in its own logical database.
const (
	// GENERAL_CACHE_INDEX (DB 0) holds anything without a better home.
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) holds user profiles and weekly streak results.
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) carries the notification pub/sub channels.
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	clients := []struct {
		target *CacheClient
		index  int
		name   string
	}{
		{&s.Cache.General, GENERAL_CACHE_INDEX, "general"},
		{&s.Cache.User, USER_CACHE_INDEX, "user"},
		{&s.Cache.Events, EVENTS_CACHE_INDEX, "events"},
	}

	for _, c := range clients {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    c.index,
		})
		if err != nil {
			return log.Err("failed to create valkey client", err, "cache", c.name)
		}
		*c.target = client
	}

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, s.Cache)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	switch index {
	case GENERAL_CACHE_INDEX:
		client = cacheDB.General
	case USER_CACHE_INDEX:
		client = cacheDB.User
	case EVENTS_CACHE_INDEX:
		client = cacheDB.Events
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index)
		return
	}

	log.Info("Successfully cleared cache database", "index", index)
}
