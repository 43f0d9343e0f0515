package techniquecurator

import (
	"testing"

	"github.com/tkramer22/bjj-os-sub000/shared/config"
	"github.com/tkramer22/bjj-os-sub000/shared/scheduler"
)

func TestTechniqueAgentName(t *testing.T) {
	agent := NewTechniqueAgent(&config.Config{})
	expected := "Technique Curator"
	if name := agent.Name(); name != expected {
		t.Errorf("Agent.Name() = %s, want %s", name, expected)
	}
}

func TestCuratorMetricsGetSummary(t *testing.T) {
	tests := []struct {
		name     string
		metrics  CuratorMetrics
		expected string
	}{
		{
			name: "All zeros",
			metrics: CuratorMetrics{
				VideosFound: 0,
				Analyzed:    0,
				Added:       0,
			},
			expected: "found 0 videos, analyzed 0, added 0 techniques",
		},
		{
			name: "Some candidates admitted",
			metrics: CuratorMetrics{
				VideosFound: 12,
				Analyzed:    9,
				Added:       2,
			},
			expected: "found 12 videos, analyzed 9, added 2 techniques",
		},
		{
			name: "With skips and errors",
			metrics: CuratorMetrics{
				VideosFound: 30,
				Analyzed:    20,
				Added:       5,
				Skipped:     8,
				Errors:      2,
			},
			expected: "found 30 videos, analyzed 20, added 5 techniques",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.metrics.GetSummary()
			if result != tt.expected {
				t.Errorf("GetSummary() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestAgentSatisfiesSchedulerInterface(t *testing.T) {
	cfg := &config.Config{
		YouTube: config.YouTubeConfig{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TokenFile:    "test-token.json",
		},
		AI: config.AIConfig{
			GeminiAPIKey: "test-api-key",
			Model:        "gemini-2.5-flash",
		},
	}

	agent := NewTechniqueAgent(cfg)

	if agent.config != cfg {
		t.Error("Config not properly set")
	}

	var _ scheduler.Agent = agent
}

func TestCancelRunFlagsRun(t *testing.T) {
	agent := NewTechniqueAgent(&config.Config{})

	agent.CancelRun("run-42")
	if !agent.cancels.IsCancelled("run-42") {
		t.Error("CancelRun() did not flag the run")
	}
	if agent.cancels.IsCancelled("run-43") {
		t.Error("CancelRun() flagged an unrelated run")
	}
}
