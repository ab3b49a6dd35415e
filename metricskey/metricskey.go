package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfCeremonyStep is perf metric
	PerfCeremonyStep = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_ceremony_step",
		Help:         "perf_ceremony_step provides the sample metrics of ceremony steps",
		RequiredTags: []string{"role", "step"},
	}

	// PerfToolExec is perf metric
	PerfToolExec = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_exec",
		Help:         "perf_tool_exec provides the sample metrics of external tool invocations",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfCeremonyStep,
	&PerfToolExec,
}
