package workflow

import (
	"github.com/hashhedge/workflow/src/utils/arkwallet"
	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/contracts"
	"github.com/hashhedge/workflow/src/utils/feed"
	"github.com/hashhedge/workflow/src/utils/model"
	"github.com/hashhedge/workflow/src/utils/monitoring"
	monitor_workflow "github.com/hashhedge/workflow/src/utils/monitoring/workflow"
	"github.com/hashhedge/workflow/src/utils/publisher"
	"github.com/hashhedge/workflow/src/utils/task"
)

// Controller wires the workflow engine with its collaborators.
// Main class that orchestrates everything.
type Controller struct {
	*task.Task

	engine *Engine
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "workflow-controller")

	// Monitoring
	monitor := monitor_workflow.NewMonitor()

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Remote collaborators
	contractClient := contracts.NewClient(&config.ContractService)
	walletClient := arkwallet.NewClient(&config.WalletService)

	// Local state
	store := NewStore()

	self.engine = NewEngine(config).
		WithContractService(contractClient).
		WithWalletService(walletClient).
		WithStore(store).
		WithMonitor(monitor)

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task)

	// Event journal
	if config.Journal.Enabled {
		db, e := model.Connect(self.Ctx, &config.Journal, "workflow")
		if e != nil {
			err = e
			return
		}

		events := make(chan *model.WorkflowEvent, config.Journal.BatchSize)
		journal := NewJournal(config).
			WithDB(db).
			WithMonitor(monitor).
			WithInputChannel(events)

		self.engine = self.engine.WithEventChannel(events)
		self.Task = self.Task.
			WithSubtask(journal.Task).
			WithOnStop(func() {
				close(events)
			})
	}

	// Contract event publishing
	if config.Redis.Enabled {
		published := make(chan *ContractEvent, config.Redis.MaxQueueSize)
		redisPublisher := publisher.NewRedisPublisher[*ContractEvent](config, "event-publisher").
			WithMonitor(monitor).
			WithInputChannel(published)

		self.engine = self.engine.WithPublishChannel(published)
		self.Task = self.Task.
			WithSubtask(redisPublisher.Task).
			WithOnStop(func() {
				close(published)
			})
	}

	// Live trade feed, consumed only for monitoring
	if config.Feed.Enabled {
		listener := feed.NewListener(config).
			WithMonitor(monitor)

		self.Task = self.Task.
			WithSubtask(listener.Task).
			WithSubtaskFunc(func() error {
				for tick := range listener.Output {
					self.Log.WithField("contract", tick.ContractId).
						WithField("price", tick.Price).
						Trace("Trade")
				}
				return nil
			})
	}

	return
}

// Engine gives embedding applications access to the workflow operations
func (self *Controller) Engine() *Engine {
	return self.engine
}
