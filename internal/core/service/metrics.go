package service

import (
	"time"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// nopMetrics is used until a recorder is attached with WithMetrics.
type nopMetrics struct{}

func (nopMetrics) SignIn(string)                           {}
func (nopMetrics) StateChanged(bool)                       {}
func (nopMetrics) Observers(int)                           {}
func (nopMetrics) Mutation(domain.EntityKind, string, int) {}
func (nopMetrics) Entries(domain.EntityKind, int)          {}
func (nopMetrics) Write(time.Duration, error)              {}
