/*
Package ports defines the driven ports (interfaces) of the intake bot.

These interfaces decouple the dialogue core from external implementations, allowing
the bot to run with various session backends, record stores and transports.

# Key Interfaces

  - StateStore: Persists and loads in-progress dialogue State per session.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - ApplicationStore: Appends a confirmed Application to the external tabular store.
  - DeadLetter: Keeps applications the ApplicationStore failed to accept, for manual recovery.
*/
package ports
