package workflow

import (
	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/model"
	"github.com/hashhedge/workflow/src/utils/monitoring"
	"github.com/hashhedge/workflow/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Journal persists workflow events in a robust way:
// - groups incoming events into batches,
// - ensures data isn't stuck even if a batch isn't big enough
type Journal struct {
	*task.Processor[*model.WorkflowEvent, *model.WorkflowEvent]

	DB *gorm.DB

	monitor monitoring.Monitor
}

func NewJournal(config *config.Config) (self *Journal) {
	self = new(Journal)

	self.Processor = task.NewProcessor[*model.WorkflowEvent, *model.WorkflowEvent](config, "journal").
		WithBatchSize(config.Journal.BatchSize).
		WithOnFlush(config.Journal.FlushInterval, self.flush).
		WithOnProcess(self.process).
		WithBackoff(config.Journal.BackoffMaxElapsedTime, config.Journal.BackoffMaxInterval)

	return
}

func (self *Journal) WithMonitor(v monitoring.Monitor) *Journal {
	self.monitor = v
	return self
}

func (self *Journal) WithInputChannel(v chan *model.WorkflowEvent) *Journal {
	self.Processor = self.Processor.WithInputChannel(v)
	return self
}

func (self *Journal) WithDB(v *gorm.DB) *Journal {
	self.DB = v
	return self
}

func (self *Journal) process(event *model.WorkflowEvent) (out []*model.WorkflowEvent, err error) {
	out = []*model.WorkflowEvent{event}
	return
}

func (self *Journal) flush(events []*model.WorkflowEvent) (out []*model.WorkflowEvent, err error) {
	if len(events) == 0 {
		return
	}

	self.Log.WithField("count", len(events)).Trace("Flushing workflow events")
	defer self.Log.Trace("Flushing workflow events done")

	err = self.DB.WithContext(self.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(events).
		Error
	if err != nil {
		self.Log.WithError(err).Error("Failed to insert workflow events")
		self.monitor.GetReport().Workflow.Errors.JournalInsert.Inc()
		return nil, err
	}

	self.monitor.GetReport().Workflow.State.JournalEventsSaved.Add(uint64(len(events)))
	return
}
