package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/go-redis/redis/v8"
	"github.com/lni/dragonboat/v4/logger"
	"strconv"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/t38")

var errNotConnected = errors.New("redis transport not initialized")

// NewRedisClientTransport creates a transport on top of the go-redis driver
func NewRedisClientTransport() transport.IRPCClientTransport {
	return &redisClientTransport{}
}

type redisClientTransport struct {
	mu     sync.RWMutex
	client *redis.Client
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *redisClientTransport) Connect(config common.ClientConfig) error {
	timeout := time.Duration(config.TimeoutSecond) * time.Second

	client := redis.NewClient(&redis.Options{
		Addr:         config.Endpoint(),
		PoolSize:     config.Transport.PoolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		// requests are never retried
		MaxRetries: -1,
		// every pooled connection has to answer in json
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			cmd := common.NewOutputCommand("json")
			return cn.Process(ctx, redis.NewCmd(ctx, commandArgs(cmd.Name, cmd.Args)...))
		},
	})

	// Check the connection so a wrong endpoint fails here and not on the first request
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Do(ctx, common.CmdPing).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to %s: %w", config.Endpoint(), err)
	}

	t.mu.Lock()
	old := t.client
	t.client = client
	t.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	Logger.Infof("Connected to %s using redis transport", config.Endpoint())
	return nil
}

func (t *redisClientTransport) Send(ctx context.Context, name string, args []any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.RLock()
	client := t.client
	t.mu.RUnlock()

	if client == nil {
		return "", errNotConnected
	}

	v, err := client.Do(ctx, commandArgs(name, args)...).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	// An error reply is an answer of the server, not a transport failure
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return "", common.NewServerError(strings.TrimPrefix(redisErr.Error(), "ERR "), "")
	}
	if err != nil {
		return "", err
	}

	return replyText(v)
}

func (t *redisClientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func commandArgs(name string, args []any) []interface{} {
	out := make([]interface{}, 0, 1+len(args))
	out = append(out, name)
	for _, arg := range args {
		out = append(out, common.FormatArg(arg))
	}
	return out
}

// replyText converts a decoded reply into its text form. In json output mode the
// server always sends a bulk string.
func replyText(v interface{}) (string, error) {
	switch reply := v.(type) {
	case string:
		return reply, nil
	case int64:
		return strconv.FormatInt(reply, 10), nil
	case nil:
		return "", nil
	default:
		data, err := json.Marshal(reply)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
