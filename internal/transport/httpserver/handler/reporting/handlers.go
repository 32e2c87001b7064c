package reporting

import (
	reportingdomain "equb-app-go/internal/domain/reporting"
	"equb-app-go/pkg/logger"
)

type Handlers struct {
	Reporting *reportingdomain.Service
	log       logger.Logger
}

func New(reporting *reportingdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{Reporting: reporting, log: log}
}
