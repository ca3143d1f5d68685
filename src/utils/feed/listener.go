package feed

import (
	"context"
	"errors"
	"time"

	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/monitoring"
	"github.com/hashhedge/workflow/src/utils/task"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Maintains a persistent websocket connection to the live trade feed.
// Dropped connections get re-established after a delay.
type Listener struct {
	*task.Task

	feedConfig config.Feed
	monitor    monitoring.Monitor

	// Decoded trades
	Output chan *TradeTick
}

func NewListener(config *config.Config) (self *Listener) {
	self = new(Listener)

	self.feedConfig = config.Feed
	self.Output = make(chan *TradeTick)

	self.Task = task.NewTask(config, "feed-listener").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Listener) WithMonitor(monitor monitoring.Monitor) *Listener {
	self.monitor = monitor
	return self
}

func (self *Listener) connect() (conn *websocket.Conn, err error) {
	ctx, cancel := context.WithTimeout(self.Ctx, 10*time.Second)
	defer cancel()

	conn, _, err = websocket.Dial(ctx, self.feedConfig.Url, nil)
	if err != nil {
		return
	}

	err = wsjson.Write(ctx, conn, &subscribeMessage{
		Op:       "subscribe",
		Channels: self.feedConfig.Channels,
	})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		conn = nil
		return
	}

	return
}

func (self *Listener) receive(conn *websocket.Conn) (err error) {
	for {
		var tick TradeTick
		err = wsjson.Read(self.Ctx, conn, &tick)
		if err != nil {
			return
		}

		self.monitor.GetReport().Feed.State.TradesReceived.Inc()

		select {
		case <-self.Ctx.Done():
			return self.Ctx.Err()
		case self.Output <- &tick:
		}
	}
}

func (self *Listener) run() (err error) {
	for {
		conn, err := self.connect()
		if err != nil {
			self.monitor.GetReport().Feed.Errors.Connection.Inc()
			self.Log.WithError(err).Error("Failed to connect to trade feed")
		} else {
			err = self.receive(conn)
			conn.Close(websocket.StatusNormalClosure, "")

			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				self.monitor.GetReport().Feed.Errors.Connection.Inc()
				self.Log.WithError(err).Warn("Trade feed connection dropped")
				self.monitor.GetReport().Feed.State.Reconnects.Inc()
			}
		}

		select {
		case <-self.StopChannel:
			return nil
		case <-time.After(self.feedConfig.ReconnectDelay):
		}
	}
}
