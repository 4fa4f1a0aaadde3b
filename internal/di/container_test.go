package di

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/UserApp/internal/config"
	"github.com/GoArmGo/UserApp/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MemoryStorage(t *testing.T) {
	cfg := &config.Config{
		StorageDriver:   config.StorageMemory,
		PasswordHashing: config.PasswordHashingNone,
		RequestTimeout:  time.Second,
		GraphQLPath:     "/graphql",
	}

	var buf bytes.Buffer
	log := logger.NewSlog(logger.SlogConfig{Level: "info", Output: &buf})

	application, err := Build(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	assert.Contains(t, buf.String(), "passwords are stored as plain text")
	assert.Contains(t, buf.String(), "user events are disabled")

	router, err := application.Router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"a@b.com","username":"ab","password":"secret1"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBuild_UnknownHashing(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageMemory, PasswordHashing: "md5"}

	_, err := Build(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
