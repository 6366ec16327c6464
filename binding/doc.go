// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package binding assigns Metal resource slots to descriptor-set layouts.
//
// Each descriptor consumes slots from one or more of three per-stage
// counters (buffers, textures and samplers). Sets of a pipeline layout are
// allocated in order, each starting where the previous one ended, and
// push constants take the next buffer slot after the last set:
//
//	alloc := binding.Allocator{Limits: binding.DefaultLimits()}
//	layout, err := alloc.AllocatePipeline(sets, pushConstants)
//	if err != nil {
//		return err
//	}
//	layout.PopulateConfiguration(cfg)
//
// Allocation is a pure function of its inputs. The same layout always
// yields the same slots, which matters because slots are baked into the
// translated source.
package binding
