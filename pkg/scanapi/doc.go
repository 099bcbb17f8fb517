// Package scanapi exposes a library of compiled machines over HTTP.
//
// The router is built with chi. Each request gets a scan ID (X-Scan-ID),
// which ScanIDExtractor adds to log records. Scan outcomes are counted in
// Prometheus collectors when WithMetrics is set.
//
//	lib, err := scanspec.Load(ctx, src, "machines", reg)
//	api := scanapi.New(lib,
//		scanapi.WithLogger(log),
//		scanapi.WithMetrics(prometheus.NewRegistry()),
//		scanapi.WithMaxSteps(1_000_000),
//	)
//	err = httpserver.NewFromConfig(cfg).Run(ctx, api.Router())
//
// A scan is a POST of the raw input to /machines/{name}/scan:
//
//	$ curl -s --data-binary @input.txt 'localhost:8080/machines/string-literal/scan?start=4'
//	{"data":{"scan_id":"…","machine":"string-literal","found":true,"exited":true,"value":"hi","pos":12,"steps":5}}
//
// Engine failures answer 422 with the failing state and position in
// error.details; unknown machines answer 404.
package scanapi
