package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and job outcomes.
// This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	jobsTotal = make(map[string]int64)

	sweepsTotal          int64
	sweepFileErrorsTotal int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordJob increments the job counter for an outcome
// ("started", "complete", "error", "rejected").
func RecordJob(outcome string) {
	mu.Lock()
	defer mu.Unlock()
	jobsTotal[outcome]++
}

// RecordSweep increments the counter of retention sweeps that removed
// a registry entry.
func RecordSweep() {
	mu.Lock()
	defer mu.Unlock()
	sweepsTotal++
}

// RecordSweepFileError increments the counter of artifact deletions
// that failed during a sweep.
func RecordSweepFileError() {
	mu.Lock()
	defer mu.Unlock()
	sweepFileErrorsTotal++
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP ripper_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE ripper_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "ripper_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP ripper_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE ripper_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP ripper_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE ripper_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "ripper_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "ripper_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	// Job outcome metrics
	b.WriteString("# HELP ripper_jobs_total Total conversion jobs by outcome\n")
	b.WriteString("# TYPE ripper_jobs_total counter\n")

	var outcomes []string
	for o := range jobsTotal {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(&b, "ripper_jobs_total{outcome=\"%s\"} %d\n", o, jobsTotal[o])
	}

	// Retention metrics
	b.WriteString("# HELP ripper_sweeper_removed_total Total jobs removed by the retention sweeper\n")
	b.WriteString("# TYPE ripper_sweeper_removed_total counter\n")
	fmt.Fprintf(&b, "ripper_sweeper_removed_total %d\n", sweepsTotal)

	b.WriteString("# HELP ripper_sweeper_file_errors_total Total artifact deletions that failed during sweeps\n")
	b.WriteString("# TYPE ripper_sweeper_file_errors_total counter\n")
	fmt.Fprintf(&b, "ripper_sweeper_file_errors_total %d\n", sweepFileErrorsTotal)

	return b.String()
}
