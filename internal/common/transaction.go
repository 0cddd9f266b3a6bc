package common

import (
	"context"
	"errors"

	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/xcontext"
)

// RetryOnConflict runs fn until it returns anything other than a Conflict error, at most
// Transaction.MaxRetries times after the first attempt. If fn runs a transaction, it must
// open and commit it itself so that each attempt reads fresh rows.
func RetryOnConflict[T any](
	ctx context.Context, operation string, fn func(context.Context) (T, error),
) (T, error) {
	maxRetries := xcontext.Configs(ctx).Transaction.MaxRetries

	var result T
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn(ctx)
		if !errors.Is(err, errorx.Error{Code: errorx.Conflict}) {
			return result, err
		}

		PromCounters[TransactionConflictTotal].WithLabelValues(operation).Inc()
		xcontext.Logger(ctx).Debugf("Transaction %s conflicted at attempt %d: %v", operation, attempt+1, err)
	}

	return result, err
}
