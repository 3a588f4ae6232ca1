// Package http provides the inbound transport for the bot.
//
// The router exposes the following endpoints:
//   - POST /slack/events: Events API intake. Answers url_verification
//     challenges and processes app_mention callbacks: a "debug" keyword posts
//     a simulated schedule message with the debug engine, any other mention
//     is matched against the task catalog and recorded as a completion.
//   - POST /slack/commands: the /set-duty slash command. Three-argument form
//     assigns a duty for a week, two-argument form clears it. Outcomes are
//     returned as plain text for in-channel display.
//   - POST /slack/interactions: interactive payloads. The checklist button
//     opens a modal of today's open tasks; its submission records the
//     selected tasks in a batch and confirms in the active thread.
//   - GET /healthz: liveness probe.
//
// Handlers decide outcomes only; all business rules live in the application
// services. The production/debug mode split is carried by two Engine values.
package http
