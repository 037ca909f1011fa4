// Package memory keeps chat histories for scripts that call LLM APIs.
//
// Model:
//   - Message is an immutable turn: role, content, speaker label, creation time.
//   - Store is an ordered list of messages plus an optional system prompt and
//     an optional retention bound (newest kept, oldest dropped).
//   - Records and the export Document are the JSON forms; LoadJSON accepts
//     what Export writes, and legacy assistant_name/timestamp keys.
//   - Wrap decorates a model call so the prompt and the extracted reply are
//     appended to a Store around it.
//
// Invariant:
//   - When a bound is set, Len() <= bound after every Add and every load.
package memory
