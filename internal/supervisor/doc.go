// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package supervisor runs Vibecatalog's long-lived services under a suture v4
// tree with restart, backoff and graceful shutdown. Supervisor events are
// logged through sutureslog into the zerolog-backed slog handler.
//
// Service adapters live in the services subpackage.
package supervisor
