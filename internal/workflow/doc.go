// Package workflow implements the Temporal workflow that runs grade report
// generation on a worker.
//
// The workflow itself is thin: it validates the request and schedules the
// GenerateReport activity, which performs all I/O. Workflow code must stay
// deterministic, so no clock, randomness, or file access happens here.
package workflow
