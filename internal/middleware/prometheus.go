package middleware

import (
	"context"
	"time"

	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
)

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		path := xcontext.HTTPRequest(ctx).URL.Path
		code := common.ResultCode(xcontext.Error(ctx))

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(path, code).Inc()
		common.PromHistograms[common.HTTPRequestDurationSeconds].
			WithLabelValues(path, code).
			Observe(time.Since(xcontext.StartTime(ctx)).Seconds())
	}
}
