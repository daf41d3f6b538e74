package exporter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equityrocket/engine/library"
	"equityrocket/state/settlement"
)

const (
	namespace = "equityrocket"
	subsystem = "engine"
)

var (
	registry = prometheus.NewRegistry()

	transactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "transactions_total",
		Help:      "Counts handled transactions by kind and result",
	}, []string{"kind", "result"})

	companies = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "companies",
		Help:      "Number of companies in the registry",
	})

	replayed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "replayed_transactions_total",
		Help:      "Counts transactions replayed from the journal on start",
	})
)

func init() {
	registry.MustRegister(transactions, companies, replayed)
}

var results = []struct {
	err   error
	label string
}{
	{library.ErrNotFound, "not_found"},
	{library.ErrNotAPartner, "not_a_partner"},
	{library.ErrInsufficientBalance, "insufficient_balance"},
	{library.ErrOverflow, "overflow"},
	{library.ErrAlreadyVoted, "already_voted"},
	{library.ErrAlreadyExecuted, "already_executed"},
	{library.ErrWrongProposalKind, "wrong_proposal_kind"},
	{library.ErrNoOpenOffer, "no_open_offer"},
	{library.ErrOfferAlreadyOpen, "offer_already_open"},
	{library.ErrTargetAlreadyPartner, "target_already_partner"},
	{library.ErrTargetNotFound, "target_not_found"},
	{library.ErrNothingToClaim, "nothing_to_claim"},
	{library.ErrDuplicateOrInvalidName, "duplicate_or_invalid_name"},
	{settlement.ErrInsufficientFunds, "insufficient_funds"},
	{settlement.ErrInsufficientAllowance, "insufficient_allowance"},
	{settlement.ErrNotIssuer, "not_issuer"},
}

// Result is the metric label for the outcome of a transaction.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range results {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "rejected"
}

func IncTransaction(kind int, err error) {
	transactions.WithLabelValues(strconv.Itoa(kind), Result(err)).Inc()
}

func SetCompanies(n int) {
	companies.Set(float64(n))
}

func IncReplayed() {
	replayed.Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until terminate is closed.
func Serve(addr string, terminate chan struct{}) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-terminate
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			library.LogCLI(err.Error(), 2)
		}
	}()
	library.LogCLI("serving metrics on "+addr, 4)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		library.LogCLI(err.Error(), 1)
	}
}
