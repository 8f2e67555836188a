package services

import (
	"time"

	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
)

// realClock is the production Clock, always returning UTC.
type realClock struct{}

// NewRealClock returns the wall clock used outside tests.
func NewRealClock() portssvc.Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }
