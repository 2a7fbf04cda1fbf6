package itemprovider

import "context"

type ItemProvider interface {
	// Returns the value stored for the given key.
	//
	// Returns domain.ErrItemNotFound if the key does not exist.
	// Returns domain.ErrTemporarilyUnavailable if the provider implementation receives an error believed to be intermittent. The call may be retried later.
	GetItem(ctx context.Context, key string) (string, error)
}
