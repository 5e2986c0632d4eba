package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ytget/media-toolkit/internal/model"
)

const namespace = "media_toolkit"

// Collector turns controller events into Prometheus series
type Collector struct {
	TasksStarted  *prometheus.CounterVec
	TasksFinished *prometheus.CounterVec
	TaskDuration  *prometheus.HistogramVec
	ActiveTasks   *prometheus.GaugeVec

	mu      sync.Mutex
	started map[string]struct{}
}

// NewCollector registers the task series on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		TasksStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_started_total",
			Help:      "Total number of tasks that reported a first event",
		}, []string{"service"}),
		TasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Total number of tasks by terminal outcome",
		}, []string{"service", "outcome"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time from start to terminal event",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"service", "outcome"}),
		ActiveTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tasks",
			Help:      "Tasks currently running per service",
		}, []string{"service"}),
		started: make(map[string]struct{}),
	}
}

// OnEvent implements controller.Observer
func (c *Collector) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	service := string(task.Service)

	c.mu.Lock()
	_, seen := c.started[task.ID]
	if !seen && !ev.IsTerminal() {
		c.started[task.ID] = struct{}{}
	}
	if ev.IsTerminal() {
		delete(c.started, task.ID)
	}
	c.mu.Unlock()

	if !ev.IsTerminal() {
		if !seen {
			c.TasksStarted.WithLabelValues(service).Inc()
			c.ActiveTasks.WithLabelValues(service).Inc()
		}
		return
	}

	if seen {
		c.ActiveTasks.WithLabelValues(service).Dec()
	} else {
		// terminal without any progress still counts as a start
		c.TasksStarted.WithLabelValues(service).Inc()
	}

	outcome := task.State.String()
	c.TasksFinished.WithLabelValues(service, outcome).Inc()
	if !task.StartedAt.IsZero() && !task.FinishedAt.IsZero() {
		c.TaskDuration.WithLabelValues(service, outcome).Observe(task.FinishedAt.Sub(task.StartedAt).Seconds())
	}
}
