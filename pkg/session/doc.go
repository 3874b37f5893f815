/*
Package session implements per-session isolation and persistence orchestration.

Each dialogue session is guarded by its own reference-counted mutex, so events of one
candidate are processed strictly one at a time while other sessions proceed in
parallel. When the bot runs as several replicas, an optional DistributedLocker
extends that guarantee across processes.
*/
package session
