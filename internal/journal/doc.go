// Package journal keeps a short SQLite record of output commands.
//
// Each LED or relay command the node performs is appended with the
// snapshot taken right after it. The journal is read by GET /api/events
// and pruned at startup. It is never used to restore outputs at boot.
package journal
