package firebase

import (
	"context"

	"google.golang.org/api/iterator"
)

// TestConnection lists at most one user to prove the admin credentials work.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.Users(ctx, "").Next()
	if err != nil && err != iterator.Done {
		return err
	}
	return nil
}
