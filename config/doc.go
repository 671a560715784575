// Package config handles application configuration loading and management.
//
// Configuration is stored in ~/.squadsync/config.json and shapes the
// simulation driver's workload: producer/worker counts, queue capacity,
// and semaphore permits.
package config
