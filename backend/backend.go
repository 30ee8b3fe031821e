// Package backend provides concrete core/state.StateBackend
// implementations: a remote archive-node client, a local pebble-backed
// snapshot store, and a mux that layers the two with write-through
// caching. Grounded on original_source's forked_backend.rs /
// sqlite_backend.rs / state_muxer.rs (see SPEC_FULL.md §7).
package backend
