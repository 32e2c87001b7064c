package equbs

import (
	equbdomain "equb-app-go/internal/domain/equb"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"equb-app-go/pkg/logger"
)

type Handlers struct {
	Equbs *equbdomain.Service
	cache commonhandler.CacheInvalidator
	log   logger.Logger
}

func New(equbs *equbdomain.Service, cache commonhandler.CacheInvalidator, log logger.Logger) *Handlers {
	return &Handlers{
		Equbs: equbs,
		cache: commonhandler.OrNoopInvalidator(cache),
		log:   log,
	}
}
