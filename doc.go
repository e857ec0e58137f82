// Package bloodpressure keeps a personal ledger of blood pressure and pulse
// readings. It is local-first: the whole ledger lives in memory, is mirrored
// to a single key of a device-local Storage after every change, and can be
// exported to or imported from a portable JSON document.
//
// The core functionalities include:
//   - Ledger Management: creating, editing and deleting readings, and listing
//     them most recent first.
//   - Validation: turning what a person typed, or what a hand-edited file
//     contains, into canonical readings with UTC dates.
//   - Import/Export: a best-effort merge of external documents into the live
//     ledger, and a stable, human-readable export of it.
//   - Classification: the Normal/Elevated/High tier of a reading.
//
// This package serves as the foundational logic for the `bp` command-line
// tool and its local HTTP server.
package bloodpressure
