// Package runner sends a Store's conversation to a model provider.
//
// Anthropic.Ask and OpenAI.Ask have the shape of memory.Call, so they can
// be passed to memory.Wrap directly: the wrapper records the prompt, the
// runner sends the windowed history, the wrapper records the reply.
//
// Invariant:
//   - The request carries the store's system prompt and the newest
//     entries that fit the token budget; a user→assistant exchange is
//     never split.
//   - The prompt being asked is always the last entry sent, whether or
//     not the caller recorded it first.
//
// Flow:
//
//	store entries -> window(budget) -> provider messages -> SDK call -> raw response
package runner
