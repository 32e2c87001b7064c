package payouts

import (
	payoutdomain "equb-app-go/internal/domain/payout"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"equb-app-go/pkg/logger"
)

type Handlers struct {
	Payouts *payoutdomain.Service
	cache   commonhandler.CacheInvalidator
	log     logger.Logger
}

func New(payouts *payoutdomain.Service, cache commonhandler.CacheInvalidator, log logger.Logger) *Handlers {
	return &Handlers{
		Payouts: payouts,
		cache:   commonhandler.OrNoopInvalidator(cache),
		log:     log,
	}
}
