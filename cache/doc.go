// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cache stores translated shader variants.
//
// Entries are grouped by shader module and by the exact translation
// options. Within a group, a finished translation is reused for any
// configuration it matches: a configuration that differs only in
// interface variables or resources the shader never reads hits the same
// entry.
//
// # Concurrency
//
// At most one translation runs per configuration. Callers asking for a
// configuration that is being translated wait for that translation and
// observe its outcome. The cache lock is never held while translating.
//
// A failed translation is reported to the callers waiting on it and then
// forgotten, so the next request retries.
//
// # Persistence
//
// Finished entries can be written with WriteTo and restored with ReadFrom.
// Records produced for another compiler version or platform are skipped.
package cache
