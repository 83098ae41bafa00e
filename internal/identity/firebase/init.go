package firebase

import (
	"context"

	"prepwise/internal/identity"
)

func init() {
	identity.RegisterProvider("firebase", func(ctx context.Context, deps identity.Deps) (identity.Provider, error) {
		admin, err := AuthClient(ctx, deps.Config.Firebase)
		if err != nil {
			return nil, err
		}
		return NewProvider(admin, NewRESTClient(deps.Config.Firebase.APIKey)), nil
	})
}
