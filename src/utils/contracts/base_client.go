package contracts

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashhedge/workflow/src/utils/build_info"
	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type BaseClient struct {
	client *resty.Client
	config *config.ContractService
	log    *logrus.Entry

	// State
	mtx      sync.RWMutex
	limiters map[string]*rate.Limiter
}

func newBaseClient(config *config.ContractService) (self *BaseClient) {
	self = new(BaseClient)
	self.config = config
	self.log = logger.NewSublogger("contract-client")

	self.limiters = make(map[string]*rate.Limiter)

	self.client =
		resty.New().
			SetBaseURL(self.config.Url).
			SetTimeout(self.config.RequestTimeout).
			SetHeader("User-Agent", "hashhedge/workflow/"+build_info.Version).
			SetRetryCount(self.config.RetryCount).
			SetTransport(self.createTransport()).
			AddRetryCondition(self.onRetryCondition).
			OnBeforeRequest(self.onRateLimit).
			OnAfterResponse(self.onStatusToError)

	return
}

func (self *BaseClient) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
		DualStack: true,
	}

	return &http.Transport{
		// Some config options disable http2, try it anyway
		ForceAttemptHTTP2: true,

		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		IdleConnTimeout:     self.config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
	}
}

// Converts HTTP status to errors. The backend puts a human readable
// message into the envelope even on error statuses.
func (self *BaseClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}

	out := &RequestError{StatusCode: resp.StatusCode()}
	var envelope Envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil {
		out.Message = envelope.Error
	}
	return out
}

// Retry request only upon server errors
func (self *BaseClient) onRetryCondition(resp *resty.Response, err error) bool {
	return resp != nil && resp.StatusCode() >= 500
}

// Handles rate limiting. There's one limiter per host.
func (self *BaseClient) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	u, err := url.ParseRequestURI(self.config.Url)
	if err != nil {
		return
	}

	self.mtx.Lock()
	limiter, ok := self.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(self.config.LimiterInterval), self.config.LimiterBurstSize)
		self.limiters[u.Host] = limiter
	}
	self.mtx.Unlock()

	return limiter.Wait(req.Context())
}
