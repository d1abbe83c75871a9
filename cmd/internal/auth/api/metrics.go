package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gate",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"result"})

	sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gate",
		Subsystem: "auth",
		Name:      "sessions_issued_total",
		Help:      "Sessions created through login.",
	})

	sessionsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gate",
		Subsystem: "auth",
		Name:      "sessions_revoked_total",
		Help:      "Sessions revoked through logout or session management.",
	})
)
