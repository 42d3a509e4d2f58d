package timing

import "context"

type keeperKey struct{}

// WithKeeper returns a context that charges the latencies of the accesses
// made with it to k.
func WithKeeper(ctx context.Context, k *Keeper) context.Context {
	return context.WithValue(ctx, keeperKey{}, k)
}

// KeeperFromContext returns the keeper carried by ctx.
func KeeperFromContext(ctx context.Context) (*Keeper, bool) {
	if ctx == nil {
		return nil, false
	}

	k, ok := ctx.Value(keeperKey{}).(*Keeper)

	return k, ok && k != nil
}
