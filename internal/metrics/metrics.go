// Package metrics 汇总采集流水线的 Prometheus 指标，通过 API 的 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedbackhub"

var (
	// FeedbackCollected 每个来源采集到的相关记录数
	FeedbackCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_collected_total",
		Help:      "Relevant feedback records emitted by each source.",
	}, []string{"source"})

	// FeedbackAppended 写入累计文件的新记录数
	FeedbackAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_appended_total",
		Help:      "Records appended to the cumulative store.",
	})

	// FeedbackDuplicates 因 id 已存在而跳过的记录数
	FeedbackDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_duplicates_total",
		Help:      "Records skipped because their id was already stored.",
	})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Pipeline runs by outcome.",
	}, []string{"status"})

	PipelineLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pipeline_last_success_timestamp_seconds",
		Help:      "Unix time of the last successful pipeline run.",
	})

	CumulativeRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cumulative_records",
		Help:      "Lines in the cumulative feedback file after the last run.",
	})
)
