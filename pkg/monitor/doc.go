// Package monitor reports cache health and performance.
//
// [Service.Health] combines availability, the client's metrics and store
// memory usage with recommendations derived from fixed thresholds.
// [Service.Report] adds a plain-text summary for operators.
// [Service.Start] logs the same data periodically.
package monitor
