package members

import (
	memberdomain "equb-app-go/internal/domain/member"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"equb-app-go/pkg/logger"
)

type Handlers struct {
	Members *memberdomain.Service
	cache   commonhandler.CacheInvalidator
	log     logger.Logger
}

func New(members *memberdomain.Service, cache commonhandler.CacheInvalidator, log logger.Logger) *Handlers {
	return &Handlers{
		Members: members,
		cache:   commonhandler.OrNoopInvalidator(cache),
		log:     log,
	}
}
