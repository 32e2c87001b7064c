package attendance

import (
	attendancedomain "equb-app-go/internal/domain/attendance"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"equb-app-go/pkg/logger"
)

type Handlers struct {
	Attendance *attendancedomain.Service
	cache      commonhandler.CacheInvalidator
	log        logger.Logger
}

func New(attendance *attendancedomain.Service, cache commonhandler.CacheInvalidator, log logger.Logger) *Handlers {
	return &Handlers{
		Attendance: attendance,
		cache:      commonhandler.OrNoopInvalidator(cache),
		log:        log,
	}
}
