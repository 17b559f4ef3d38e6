// Package journey defines the data model for UX-test user journeys.
//
// # Overview
//
// A journey is one user's ordered traversal of application screens during a
// test run. Each visited screen is recorded as a [Step] carrying the screen
// name and an optional stable identifier. Journeys are the sole input to the
// flow layout engine in [github.com/uxlens/journeyflow/pkg/flow].
//
// # Screen Identity
//
// Two steps refer to the same screen node if and only if their screen keys
// are identical strings. The key is derived deterministically by [Step.Key]:
// the screen name alone when no identifier is present, otherwise
// "name_id". Screens sharing a name but carrying different identifiers are
// distinct nodes - this matters for apps that instantiate the same template
// screen multiple times.
//
// # Serialization
//
// Journeys round-trip through JSON using the backend contract:
//
//	[{"name": "U1", "steps": [{"screenName": "Home", "screenId": 4}]}]
//
// The screenId field accepts both JSON strings and numbers; see [ScreenID].
// BSON tags are provided for document storage.
package journey
