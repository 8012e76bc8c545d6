package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/identity"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type fakeLoader struct {
	employees []identity.Employee
	err       error
	calls     int
}

func (f *fakeLoader) LoadDirectory(ctx context.Context) ([]identity.Employee, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.employees, nil
}

func TestCache_Directory_MemoizesLoad(t *testing.T) {
	loader := &fakeLoader{employees: []identity.Employee{
		{ID: "1", Username: "sontt", DisplayName: "Trần Thanh Sơn"},
	}}
	cache := identity.NewCache(loader, nil, time.Hour)
	ctx := context.Background()

	dir1, err := cache.Directory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, dir1.Len())

	dir2, err := cache.Directory(ctx)
	assert.NoError(t, err)
	assert.Same(t, dir1, dir2)
	assert.Equal(t, 1, loader.calls)
}

func TestCache_Refresh_ReloadsFromSource(t *testing.T) {
	loader := &fakeLoader{employees: []identity.Employee{
		{ID: "1", Username: "sontt", DisplayName: "Trần Thanh Sơn"},
	}}
	cache := identity.NewCache(loader, nil, time.Hour)
	ctx := context.Background()

	_, err := cache.Directory(ctx)
	assert.NoError(t, err)

	loader.employees = append(loader.employees, identity.Employee{
		ID: "2", Username: "anv", DisplayName: "Nguyễn Văn A",
	})
	assert.NoError(t, cache.Refresh(ctx))

	dir, err := cache.Directory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, dir.Len())
	assert.Equal(t, 2, loader.calls)
}

func TestCache_ServesStaleOnLoadFailure(t *testing.T) {
	loader := &fakeLoader{employees: []identity.Employee{
		{ID: "1", Username: "sontt", DisplayName: "Trần Thanh Sơn"},
	}}
	// tiny ttl so the second call must attempt a reload
	cache := identity.NewCache(loader, nil, time.Nanosecond)
	ctx := context.Background()

	dir, err := cache.Directory(ctx)
	assert.NoError(t, err)

	loader.err = errors.New("account api down")
	time.Sleep(time.Millisecond)

	stale, err := cache.Directory(ctx)
	assert.NoError(t, err)
	assert.Same(t, dir, stale)
}

func TestCache_RedisHitSkipsLoader(t *testing.T) {
	employees := []identity.Employee{
		{ID: "1", Username: "sontt", DisplayName: "Trần Thanh Sơn"},
	}
	raw, err := json.Marshal(employees)
	assert.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("basepulse:directory").SetVal(string(raw))

	loader := &fakeLoader{}
	cache := identity.NewCache(loader, rdb, time.Hour)

	dir, err := cache.Directory(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, dir.Len())
	assert.Equal(t, 0, loader.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_RedisMissFallsThroughAndStores(t *testing.T) {
	employees := []identity.Employee{
		{ID: "1", Username: "sontt", DisplayName: "Trần Thanh Sơn"},
	}
	raw, err := json.Marshal(employees)
	assert.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("basepulse:directory").RedisNil()
	mock.ExpectSet("basepulse:directory", raw, time.Hour).SetVal("OK")

	loader := &fakeLoader{employees: employees}
	cache := identity.NewCache(loader, rdb, time.Hour)

	dir, err := cache.Directory(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, dir.Len())
	assert.Equal(t, 1, loader.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
