// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline_test

import (
	"testing"

	"github.com/aibor/pibuild/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageSet(t *testing.T) {
	var stage pipeline.Stage

	require.NoError(t, stage.Set("rootfs-image"))
	assert.Equal(t, pipeline.StageRootfsImage, stage)
	assert.Equal(t, "rootfs-image", stage.String())
	assert.True(t, stage.RequiresRoot())

	err := stage.Set("deploy")
	require.ErrorIs(t, err, pipeline.ErrUnknownStage)
	assert.Equal(t, pipeline.StageRootfsImage, stage)
}

func TestStagesOrder(t *testing.T) {
	stages := pipeline.Stages()

	require.NotEmpty(t, stages)
	assert.Equal(t, pipeline.StageFetch, stages[0])
	assert.Equal(t, pipeline.StageManifest, stages[len(stages)-1])

	for _, stage := range stages {
		assert.Equal(t, stage == pipeline.StageRootfsImage || stage == pipeline.StageBootfs,
			stage.RequiresRoot(), stage)
	}
}
