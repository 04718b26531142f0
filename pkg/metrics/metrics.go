// Package metrics exposes prometheus collectors for the streaming pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_sessions_active",
		Help: "Number of live client sessions.",
	})

	AudioFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_audio_frames_total",
		Help: "Audio frames relayed to the recognition backend.",
	})

	TranscriptEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_transcript_events_total",
		Help: "Transcript events delivered, by kind.",
	}, []string{"kind"})

	InterpretationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_interpretations_total",
		Help: "Command interpretations, by outcome.",
	}, []string{"outcome"})

	DispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_dispatches_total",
		Help: "Action dispatches, by action kind and status.",
	}, []string{"action", "status"})

	SpeechReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_speech_reconnects_total",
		Help: "Automatic recognition exchange reconnects.",
	})

	ProposalsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_proposals_expired_total",
		Help: "Proposed commands that expired unconfirmed.",
	})
)
