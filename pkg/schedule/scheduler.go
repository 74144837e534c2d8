package schedule

import (
	"context"
	"errors"
	"sync"

	"github.com/robfig/cron/v3"
)

var (
	ErrTaskAdded   = errors.New("task already added")
	ErrInvalidSpec = errors.New("invalid cron spec")
)

// Task is a named recurring job driven by a standard 5-field cron spec.
type Task struct {
	Name string
	Spec string
	Do   func()
}

type cronTask struct {
	id cron.EntryID
	*Task
}

// Scheduler runs pipeline executions on cron schedules for deployments that
// do not use a workflow engine.
type Scheduler struct {
	cron  *cron.Cron
	tasks map[string]*cronTask
	mux   sync.RWMutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		tasks: make(map[string]*cronTask),
	}
}

func (s *Scheduler) AddTask(task *Task) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, exists := s.tasks[task.Name]; exists {
		return ErrTaskAdded
	}

	id, err := s.cron.AddFunc(task.Spec, task.Do)
	if err != nil {
		return errors.Join(ErrInvalidSpec, err)
	}

	s.tasks[task.Name] = &cronTask{
		id:   id,
		Task: task,
	}
	return nil
}

func (s *Scheduler) GetTask(name string) *Task {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if task, exists := s.tasks[name]; exists {
		return task.Task
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop(_ context.Context) error {
	ctx := s.cron.Stop()
	<-ctx.Done()
	return nil
}
