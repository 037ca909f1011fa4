// Package provider builds SDK clients and reads reply text out of their
// responses.
//
// Shapes:
//   - Anthropic messages are content blocks: content[0].text.
//   - OpenAI chat completions are choices: choices[0].message.content.
package provider
