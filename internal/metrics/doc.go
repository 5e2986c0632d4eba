// Package metrics counts task outcomes per downloader tool and serves them,
// with a health check and recent history, over a small HTTP endpoint.
package metrics
