// Package csync provides small thread-safe containers.
//
// Map is a mutex-guarded map for goroutines that publish values
// concurrently and read one snapshot when the work is done:
//
//	results := csync.NewMap[string, probe.Result]()
//	results.Set("provider-id", res) // from any goroutine
//	all := results.ToMap()          // copy, safe to keep
package csync
