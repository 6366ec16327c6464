// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

// ExecutionModel returns the SPIR-V execution model of stage.
func ExecutionModel(stage conv.Stage) spirv.ExecutionModel {
	switch stage {
	case conv.StageTessControl:
		return spirv.ExecutionModelTessellationControl
	case conv.StageTessEval:
		return spirv.ExecutionModelTessellationEvaluation
	case conv.StageFragment:
		return spirv.ExecutionModelFragment
	case conv.StageCompute:
		return spirv.ExecutionModelGLCompute
	default:
		return spirv.ExecutionModelVertex
	}
}

// findEntryPoint looks up name for stage. An empty name selects the first
// entry point of the stage.
func findEntryPoint(m *spirv.Module, name string, stage conv.Stage) (*spirv.EntryPoint, error) {
	model := ExecutionModel(stage)
	if name == "" {
		for _, ep := range m.EntryPoints {
			if ep.Model == model {
				return ep, nil
			}
		}
	} else if ep, err := m.FindEntryPoint(name, model); err == nil {
		return ep, nil
	}
	return nil, conv.NewConfigurationError(stage, name, "entry point", "no %s entry point in module", model)
}
