package debounce

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts edit outcomes across controllers.
type Metrics struct {
	Submitted  prometheus.Counter
	Superseded prometheus.Counter
	Canceled   prometheus.Counter
	Applied    prometheus.Counter
	Failed     prometheus.Counter
}

// NewMetrics creates the edit counters and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_edit_submitted_total",
			Help: "Edits submitted to a debounce controller.",
		}),
		Superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_edit_superseded_total",
			Help: "Edits replaced by a newer edit before they were sent.",
		}),
		Canceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_edit_canceled_total",
			Help: "In-flight edit requests canceled by a newer edit or by close.",
		}),
		Applied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_edit_applied_total",
			Help: "Edit results applied to the portfolio.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_edit_failed_total",
			Help: "Edit requests that failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submitted, m.Superseded, m.Canceled, m.Applied, m.Failed)
	}
	return m
}
