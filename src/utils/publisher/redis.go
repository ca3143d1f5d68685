package publisher

import (
	"encoding"
	"fmt"

	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/monitoring"
	"github.com/hashhedge/workflow/src/utils/task"

	"github.com/redis/go-redis/v9"
)

// Forwards messages to Redis
type RedisPublisher[In encoding.BinaryMarshaler] struct {
	*task.Task

	redisConfig config.Redis

	monitor monitoring.Monitor

	client      *redis.Client
	channelName string
	input       chan In
}

func NewRedisPublisher[In encoding.BinaryMarshaler](config *config.Config, name string) (self *RedisPublisher[In]) {
	self = new(RedisPublisher[In])

	self.redisConfig = config.Redis
	self.channelName = config.Redis.ChannelName

	self.Task = task.NewTask(config, name).
		WithSubtaskFunc(self.run).
		WithOnBeforeStart(self.connect).
		WithOnAfterStop(self.disconnect).
		WithWorkerPool(config.Redis.MaxWorkers)

	return
}

func (self *RedisPublisher[In]) WithInputChannel(v chan In) *RedisPublisher[In] {
	self.input = v
	return self
}

func (self *RedisPublisher[In]) WithMonitor(monitor monitoring.Monitor) *RedisPublisher[In] {
	self.monitor = monitor
	return self
}

func (self *RedisPublisher[In]) disconnect() {
	err := self.client.Close()
	if err != nil {
		self.Log.WithError(err).Error("Failed to close connection")
	}
}

func (self *RedisPublisher[In]) connect() (err error) {
	opts := redis.Options{
		ClientName:      fmt.Sprintf("hashhedge/%s", self.Name),
		Addr:            fmt.Sprintf("%s:%d", self.redisConfig.Host, self.redisConfig.Port),
		Password:        self.redisConfig.Password,
		Username:        self.redisConfig.User,
		DB:              self.redisConfig.DB,
		MinIdleConns:    self.redisConfig.MinIdleConns,
		MaxIdleConns:    self.redisConfig.MaxIdleConns,
		ConnMaxIdleTime: self.redisConfig.ConnMaxIdleTime,
		PoolSize:        self.redisConfig.MaxOpenConns,
		ConnMaxLifetime: self.redisConfig.ConnMaxLifetime,
	}

	self.client = redis.NewClient(&opts)

	// Fail fast when Redis isn't reachable
	return self.client.Ping(self.Ctx).Err()
}

func (self *RedisPublisher[In]) publish(msg In) {
	payload, err := msg.MarshalBinary()
	if err != nil {
		self.Log.WithError(err).Error("Failed to marshal message")
		self.monitor.GetReport().Workflow.Errors.PublishEvent.Inc()
		return
	}

	err = self.client.Publish(self.Ctx, self.channelName, payload).Err()
	if err != nil {
		self.Log.WithError(err).Error("Failed to publish message")
		self.monitor.GetReport().Workflow.Errors.PublishEvent.Inc()
		return
	}

	self.monitor.GetReport().Workflow.State.EventsPublished.Inc()
}

func (self *RedisPublisher[In]) run() (err error) {
	for msg := range self.input {
		msg := msg
		self.SubmitToWorker(func() {
			self.publish(msg)
		})
	}
	return nil
}
