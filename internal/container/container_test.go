package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-catalog/config"
	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

func testConfig() *config.Config {
	return &config.Config{AppName: "library-catalog", JWTSecret: "container-test-secret", JWTTTL: time.Hour, StoreDriver: config.DriverMemory}
}

func TestNewWithStores_WiresServices(t *testing.T) {
	c, err := NewWithStores(testConfig(), helpers.NewDiscardLogger(), MemoryStores())
	require.NoError(t, err)

	require.NotNil(t, c.AuthService)
	require.NotNil(t, c.BookService)
	assert.Nil(t, c.AuthService.Mail)
	assert.Nil(t, c.BookService.Cache)
	assert.Nil(t, c.BookService.Index)
	assert.Nil(t, c.BookService.Covers)

	res, err := c.AuthService.Register(context.Background(), application.RegisterInput{
		Name: "Ann", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	claims, err := c.JWT.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestNewWithStores_RequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	_, err := NewWithStores(cfg, helpers.NewDiscardLogger(), MemoryStores())
	assert.ErrorIs(t, err, helpers.ErrEmptySecret)
}

func TestNew_MemoryDriverWithoutIntegrations(t *testing.T) {
	c, err := New(context.Background(), testConfig(), helpers.NewDiscardLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Redis)
	assert.Nil(t, c.ES)
	assert.Nil(t, c.GCS)
	assert.Nil(t, c.RabbitPub)
	assert.NoError(t, c.Store.Ping(context.Background()))
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "sqlite"
	_, err := New(context.Background(), cfg, helpers.NewDiscardLogger())
	assert.Error(t, err)
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	c := &Container{}
	c.closers = append(c.closers, func() { order = append(order, 1) }, func() { order = append(order, 2) })
	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)
}

func TestSeedAdmin_MemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword = "Root", "root@x.com", "rootpw1"

	c, err := New(ctx, cfg, helpers.NewDiscardLogger())
	require.NoError(t, err)
	defer c.Close()

	u, created, err := c.SeedAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin())

	res, err := c.AuthService.Login(ctx, "root@x.com", "rootpw1")
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin())

	again, created, err := c.SeedAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}

func TestSeedAdmin_Disabled(t *testing.T) {
	c, err := NewWithStores(testConfig(), helpers.NewDiscardLogger(), MemoryStores())
	require.NoError(t, err)

	u, created, err := c.SeedAdmin(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.False(t, created)
}

func TestSeedAdmin_MissingPassword(t *testing.T) {
	cfg := testConfig()
	cfg.SeedAdminEmail = "root@x.com"
	c, err := NewWithStores(cfg, helpers.NewDiscardLogger(), MemoryStores())
	require.NoError(t, err)

	_, _, err = c.SeedAdmin(context.Background())
	assert.ErrorIs(t, err, application.ErrValidation)
}
