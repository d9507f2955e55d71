// Package schedule runs recurring jobs declared in a YAML file. Timing is
// a cron string handed to robfig/cron; each job maps to one registered
// operation.
package schedule

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Job is one scheduled operation.
type Job struct {
	Name        string   `yaml:"name"`
	Spec        string   `yaml:"spec"` // standard 5-field cron expression
	Kind        string   `yaml:"kind"` // "uptime", "changelog", "news"
	URLs        []string `yaml:"urls,omitempty"`
	Topic       string   `yaml:"topic,omitempty"`
	Smart       bool     `yaml:"smart,omitempty"`
	TimeoutSecs int      `yaml:"timeout_secs,omitempty"`
}

// JobsFile is the top-level YAML document.
type JobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads and validates a jobs file.
func LoadJobs(path string) (*JobsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: read %s", path)
	}

	var jf JobsFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, eris.Wrapf(err, "schedule: parse %s", path)
	}
	if len(jf.Jobs) == 0 {
		return nil, eris.Errorf("schedule: no jobs in %s", path)
	}

	for i, j := range jf.Jobs {
		if j.Name == "" {
			return nil, eris.Errorf("schedule: job %d has no name", i)
		}
		if j.Spec == "" {
			return nil, eris.Errorf("schedule: job %q has no cron spec", j.Name)
		}
		if j.Kind == "" {
			return nil, eris.Errorf("schedule: job %q has no kind", j.Name)
		}
	}
	return &jf, nil
}

// Handler executes one job kind.
type Handler func(ctx context.Context, job Job) error

// Runner schedules jobs onto a cron instance.
type Runner struct {
	cron     *cron.Cron
	handlers map[string]Handler
}

// NewRunner creates a Runner with a zap-backed cron logger.
func NewRunner() *Runner {
	return &Runner{
		cron:     cron.New(cron.WithLogger(cronLogger{})),
		handlers: make(map[string]Handler),
	}
}

// Register associates a job kind with its handler.
func (r *Runner) Register(kind string, h Handler) {
	r.handlers[kind] = h
}

// Run schedules all jobs and blocks until ctx is cancelled. Each job run
// gets its own timeout context; failures are logged, never fatal.
func (r *Runner) Run(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		handler, ok := r.handlers[job.Kind]
		if !ok {
			return eris.Errorf("schedule: unknown job kind %q for %q", job.Kind, job.Name)
		}

		timeout := time.Duration(job.TimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}

		if _, err := r.cron.AddFunc(job.Spec, func() {
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			if err := handler(runCtx, job); err != nil {
				zap.L().Error("schedule: job failed",
					zap.String("job", job.Name),
					zap.String("kind", job.Kind),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("schedule: job complete",
				zap.String("job", job.Name),
				zap.Duration("took", time.Since(start)),
			)
		}); err != nil {
			return eris.Wrapf(err, "schedule: add job %q", job.Name)
		}
	}

	zap.L().Info("schedule: runner started", zap.Int("jobs", len(jobs)))
	r.cron.Start()
	<-ctx.Done()

	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// cronLogger adapts robfig/cron's logger to zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	zap.L().Debug("cron: "+msg, zap.String("kv", flatten(keysAndValues)))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	zap.L().Error("cron: "+msg, zap.Error(err), zap.String("kv", flatten(keysAndValues)))
}

func flatten(kvs []any) string {
	out := ""
	for i := 0; i+1 < len(kvs); i += 2 {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%v=%v", kvs[i], kvs[i+1])
	}
	return out
}
