package local

import (
	"context"

	"prepwise/internal/identity"
)

func init() {
	identity.RegisterProvider("local", func(_ context.Context, deps identity.Deps) (identity.Provider, error) {
		return New(deps.Redis, deps.Config.Local.JWTSecret, deps.Config.Local.Issuer)
	})
}
