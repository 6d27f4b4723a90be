package main

import (
	"errors"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"store-bot.backend/internal/config"
)

func testCfg() *config.Config {
	cfg := config.Load()
	cfg.Server.Env = "test"
	cfg.Reconcile.Interval = time.Hour
	return cfg
}

func withSeams(t *testing.T, fn func()) {
	t.Helper()
	origDotenv, origCfg, origRedis, origDB, origRun := loadDotenv, loadCfg, initRedis, openDB, runServer
	t.Cleanup(func() {
		loadDotenv, loadCfg, initRedis, openDB, runServer = origDotenv, origCfg, origRedis, origDB, origRun
	})
	fn()
}

func TestRunMainProcess_RedisFailure(t *testing.T) {
	withSeams(t, func() {
		loadDotenv = func(...string) error { return errors.New("no .env") }
		loadCfg = testCfg
		initRedis = func(url, password string) error { return errors.New("redis down") }

		err := runMainProcess()
		assert.ErrorContains(t, err, "redis")
	})
}

func TestRunMainProcess_DatabaseFailure(t *testing.T) {
	withSeams(t, func() {
		loadDotenv = func(...string) error { return nil }
		loadCfg = testCfg
		initRedis = func(url, password string) error { return nil }
		openDB = func(dsn string) (*gorm.DB, error) { return nil, errors.New("db down") }

		err := runMainProcess()
		assert.ErrorContains(t, err, "database")
	})
}

func TestRunMainProcess_StartsAndServes(t *testing.T) {
	withSeams(t, func() {
		loadDotenv = func(...string) error { return nil }
		loadCfg = testCfg
		initRedis = func(url, password string) error { return nil }
		openDB = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
		}

		var served string
		runServer = func(r *gin.Engine, port string) error {
			served = port
			return nil
		}

		err := runMainProcess()
		assert.NoError(t, err)
		assert.Equal(t, "8080", served)
	})
}
