package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddTask(t *testing.T) {
	s := NewScheduler()
	task := &Task{Name: "launchpad", Spec: "0 0 * * 0", Do: func() {}}
	assert.NoError(t, s.AddTask(task))
	assert.Equal(t, task, s.GetTask("launchpad"))
	assert.Nil(t, s.GetTask("jira"))
}

func TestAddTaskDuplicate(t *testing.T) {
	s := NewScheduler()
	assert.NoError(t, s.AddTask(&Task{Name: "launchpad", Spec: "@weekly", Do: func() {}}))
	assert.ErrorIs(t, s.AddTask(&Task{Name: "launchpad", Spec: "@weekly", Do: func() {}}), ErrTaskAdded)
}

func TestAddTaskInvalidSpec(t *testing.T) {
	s := NewScheduler()
	assert.ErrorIs(t, s.AddTask(&Task{Name: "bad", Spec: "not a spec", Do: func() {}}), ErrInvalidSpec)
}
