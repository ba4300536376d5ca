package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters of the board.
type Metrics struct {
	ListingsCreated  prometheus.Counter
	ListingsSwept    prometheus.Counter
	ContactsProposed prometheus.Counter
	ContactsApproved prometheus.Counter
	VisitsRecorded   prometheus.Counter
}

// New creates the counters and registers them with reg. A nil registerer skips
// registration, which keeps tests from colliding on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ListingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upzunction_listings_created_total",
			Help: "Total number of listings created",
		}),
		ListingsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upzunction_listings_swept_total",
			Help: "Total number of expired listings deactivated by the sweeper",
		}),
		ContactsProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upzunction_contacts_proposed_total",
			Help: "Total number of contact proposals sent to listing owners",
		}),
		ContactsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upzunction_contacts_approved_total",
			Help: "Total number of contact proposals approved by listing owners",
		}),
		VisitsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upzunction_visits_recorded_total",
			Help: "Total number of page visits counted",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ListingsCreated, m.ListingsSwept, m.ContactsProposed, m.ContactsApproved, m.VisitsRecorded)
	}
	return m
}

func (m *Metrics) IncrementListingsCreated() {
	m.ListingsCreated.Inc()
}

func (m *Metrics) AddListingsSwept(n int64) {
	m.ListingsSwept.Add(float64(n))
}

func (m *Metrics) IncrementContactsProposed() {
	m.ContactsProposed.Inc()
}

func (m *Metrics) IncrementContactsApproved() {
	m.ContactsApproved.Inc()
}

func (m *Metrics) IncrementVisitsRecorded() {
	m.VisitsRecorded.Inc()
}
