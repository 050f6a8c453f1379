package etcd

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Prefix roots every API instance key: Prefix/<env>/<version>/<host:port>.
const Prefix = "/services/studioadmin"

type Config struct {
	Endpoints   []string
	TTL         int
	DialTimeout time.Duration
}

type Client struct {
	*clientv3.Client
	ttl int64
}

func New(cfg Config) (*Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	cli, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: cfg.DialTimeout})
	if err != nil {
		return nil, err
	}
	ttl := int64(cfg.TTL)
	if ttl <= 0 {
		ttl = 10
	}
	return &Client{Client: cli, ttl: ttl}, nil
}

// Instance is the value stored for one running API process.
type Instance struct {
	ID        string `json:"instance_id"`
	Env       string `json:"env"`
	Version   string `json:"version"`
	Host      string `json:"ip"`
	Port      string `json:"port"`
	Addr      string `json:"addr"`
	StartedAt int64  `json:"startup_unix"`
}

// Key is stable across restarts of the same host:port.
func (i Instance) Key() string {
	return path.Join(Prefix, i.Env, i.Version, i.Host+":"+i.Port)
}

// Registration is a live lease; Deregister releases it.
type Registration struct {
	Key   string
	Lease clientv3.LeaseID
}

// Register puts inst under a lease kept alive until ctx ends or Deregister runs.
func (c *Client) Register(ctx context.Context, inst Instance) (*Registration, error) {
	val, err := json.Marshal(inst)
	if err != nil {
		return nil, err
	}
	lease, err := c.Client.Grant(ctx, c.ttl)
	if err != nil {
		return nil, err
	}
	key := inst.Key()
	if _, err := c.Client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return nil, err
	}
	ch, err := c.Client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return nil, err
	}
	go func() {
		for range ch {
		}
	}()
	return &Registration{Key: key, Lease: lease.ID}, nil
}

// Deregister removes the key and revokes its lease. The key may already be
// gone when the lease expired first.
func (c *Client) Deregister(ctx context.Context, reg *Registration) error {
	if reg == nil {
		return nil
	}
	_, delErr := c.Client.Delete(ctx, reg.Key)
	var revErr error
	if reg.Lease != 0 {
		_, revErr = c.Client.Revoke(ctx, reg.Lease)
	}
	return errors.Join(delErr, revErr)
}

// Instances lists the registered API processes of env.
func (c *Client) Instances(ctx context.Context, env string) ([]Instance, error) {
	resp, err := c.Client.Get(ctx, path.Join(Prefix, env)+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	vals := make([][]byte, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		vals = append(vals, kv.Value)
	}
	return decodeInstances(vals), nil
}

// decodeInstances skips values written by something other than Register.
func decodeInstances(vals [][]byte) []Instance {
	out := make([]Instance, 0, len(vals))
	for _, v := range vals {
		var inst Instance
		if err := json.Unmarshal(v, &inst); err != nil || inst.ID == "" {
			continue
		}
		out = append(out, inst)
	}
	return out
}

func (c *Client) Close() error { return c.Client.Close() }
