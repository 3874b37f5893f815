/*
Package domain contains the core domain models of the recruitment intake dialogue.

It defines the entities the dialogue engine reasons about: the application being
collected, the per-session execution state, the inbound events delivered by a
transport and the outbound effects the host must perform. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Stage: The closed set of dialogue steps (AwaitingName ... Completed, Cancelled).
  - Application: The record assembled over the conversation and appended to the sheet.
  - State: The runtime snapshot of one session (Stage, Application, prompt bookkeeping).
  - Event: An inbound user action (start, free text, button choice, cancel).
  - Effect: A structural description of what the host should render or execute.
*/
package domain
