// Package metric provides Prometheus metrics for cfkv.
//
// A Registry owns a prometheus.Registry with the Go runtime and process
// collectors plus the adapter metrics:
//
//   - cfkv_instructions_total{instruction,result}
//   - cfkv_instruction_duration_seconds{instruction}
//   - cfkv_instructions_in_flight
//   - cfkv_multi_get_keys and cfkv_multi_get_key_errors_total
//
// Engines may register their own collectors through Registerer.
// Metrics are exposed with Handler or written to a textfile with
// WriteTextfile.
package metric
