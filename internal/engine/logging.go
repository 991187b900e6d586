package engine

import (
	"github.com/sirupsen/logrus"
)

func (e *Engine) logEntry() *logrus.Entry {
	entry := e.log.WithComponent("engine")
	if e.cfg != nil && e.cfg.Sync.ActiveProfile != "" {
		entry = entry.WithField("profile", e.cfg.Sync.ActiveProfile)
	}
	return entry
}

func (e *Engine) dealEntry(dealID int64) *logrus.Entry {
	return e.log.WithDealID(dealID).WithFields(e.logEntry().Data)
}
