package settings

import (
	"context"
)

// Repository is durable client-side storage for small key/value settings.
// The client persists exactly three keys: "authToken", "authUser" (JSON) and
// "appTheme"; everything else is rebuilt from server responses each session.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Keys of the persisted settings.
const (
	KeyAuthToken = "authToken"
	KeyAuthUser  = "authUser"
	KeyAppTheme  = "appTheme"
)
