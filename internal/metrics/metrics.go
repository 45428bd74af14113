package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_registrations_total",
			Help: "Total number of registered users",
		},
	)

	LoginsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_logins_total",
			Help: "Total number of successful logins",
		},
	)

	NotificationsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_notifications_created_total",
			Help: "Total number of notifications created",
		},
	)

	NotificationsReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_notifications_read_total",
			Help: "Total number of notifications marked read",
		},
	)
)

func Init() {
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(NotificationsCreatedTotal)
	prometheus.MustRegister(NotificationsReadTotal)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
