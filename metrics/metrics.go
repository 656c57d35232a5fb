package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ride_bot_votes_cast_total",
		Help: "Votes recorded, by resulting status.",
	}, []string{"status"})

	VotesRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ride_bot_votes_rate_limited_total",
		Help: "Vote attempts rejected by the cooldown.",
	})

	RegistrationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ride_bot_registrations_created_total",
		Help: "Registration cards created, by placement mode.",
	}, []string{"mode"})

	RegistrationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ride_bot_registrations_failed_total",
		Help: "Announcements dropped because every placement mode failed.",
	})
)

// NewServer exposes /metrics and /healthz for the operator.
func NewServer(address string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{Addr: address, Handler: router}
}
