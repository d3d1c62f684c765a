package core

import "context"

type witnessKey struct{}

// WithWitness marks the given accounts as witnessed on the context. The
// settlement worker witnesses the transfer sender; an engine witnesses its
// own contract address before moving funds it holds; the oracle worker
// witnesses the oracle identity after verifying the response.
func WithWitness(ctx context.Context, accounts ...Address) context.Context {
	set := witnessSet(ctx)
	next := make(map[Address]struct{}, len(set)+len(accounts))
	for a := range set {
		next[a] = struct{}{}
	}
	for _, a := range accounts {
		next[a] = struct{}{}
	}

	return context.WithValue(ctx, witnessKey{}, next)
}

// CheckWitness reports whether account has been witnessed on this call.
func CheckWitness(ctx context.Context, account Address) bool {
	_, ok := witnessSet(ctx)[account]
	return ok
}

func witnessSet(ctx context.Context) map[Address]struct{} {
	set, _ := ctx.Value(witnessKey{}).(map[Address]struct{})
	return set
}
