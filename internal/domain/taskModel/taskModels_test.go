package taskModel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverallProgress_Bands(t *testing.T) {
	tests := []struct {
		name  string
		step  Step
		local int
		want  int
	}{
		{"upload start", StepUpload, 0, 0},
		{"upload done", StepUpload, 100, 25},
		{"extraction halfway", StepExtraction, 50, 37},
		{"extraction done", StepExtraction, 100, 50},
		{"chunking done", StepChunking, 100, 75},
		{"vectorization start", StepVectorization, 0, 75},
		{"vectorization done", StepVectorization, 100, 100},
		{"local below range clamps", StepUpload, -10, 0},
		{"local above range clamps", StepVectorization, 140, 100},
		{"unknown step", Step("rewrite"), 50, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OverallProgress(tc.step, tc.local))
		})
	}
}

func TestOverallProgress_StepCompletionMatchesNextStepStart(t *testing.T) {
	steps := []Step{StepUpload, StepExtraction, StepChunking, StepVectorization}
	for i := 0; i < len(steps)-1; i++ {
		assert.Equal(t, OverallProgress(steps[i], 100), OverallProgress(steps[i+1], 0),
			"band of %s must end where %s begins", steps[i], steps[i+1])
	}
}

func TestStatusForStep(t *testing.T) {
	assert.Equal(t, StatusUploading, StatusForStep(StepUpload))
	assert.Equal(t, StatusExtracting, StatusForStep(StepExtraction))
	assert.Equal(t, StatusChunking, StatusForStep(StepChunking))
	assert.Equal(t, StatusVectorizing, StatusForStep(StepVectorization))
	assert.Equal(t, StatusPending, StatusForStep(Step("rewrite")))
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusVectorizing.Terminal())
}
