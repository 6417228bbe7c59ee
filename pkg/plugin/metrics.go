package plugin

import (
	"expvar"

	"github.com/inbucket/rcptcontact/pkg/metric"
)

var (
	// Metrics is the published map of plugin counters.
	Metrics = expvar.NewMap("rcptcontact")

	expScanned  = metric.NewCounter(Metrics, "MessagesScanned")
	expBuffered = metric.NewCounter(Metrics, "CandidatesBuffered")
	expSaved    = metric.NewCounter(Metrics, "ContactsSaved")
	expFailed   = metric.NewCounter(Metrics, "ContactsFailed")
	expErrors   = metric.NewCounter(Metrics, "ScanErrors")
)
