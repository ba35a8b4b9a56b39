package mqtt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/l1"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover collects nodes from retained meta messages, until timeout
// expires. The result is sorted by name.
func Discover(ctx context.Context, brokerURL string, timeout time.Duration) ([]l1.NodeInfo, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err := q.Connect(ctx); err != nil {
		return nil, err
	}
	defer q.Close()
	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	c := newCollector()
	q.Sub(AllNodesTopic(TopicMeta), c.handle)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.result(), nil
}

type collector struct {
	ch    chan l1.NodeInfo
	nodes map[string]l1.NodeInfo
}

func newCollector() *collector {
	return &collector{ch: make(chan l1.NodeInfo, 64), nodes: make(map[string]l1.NodeInfo)}
}

func (c *collector) handle(topic string, payload []byte) {
	ref, _, ok := ParseNodeTopic(topic)
	if !ok || len(payload) == 0 {
		return
	}
	info := l1.NodeInfo{Ref: ref}
	if err := json.Unmarshal(payload, &info); err != nil {
		glog.Warningf("%s: bad meta: %v", topic, err)
		return
	}
	info.Ref = ref
	select {
	case c.ch <- info:
	default:
	}
}

func (c *collector) result() []l1.NodeInfo {
drain:
	for {
		select {
		case info := <-c.ch:
			c.nodes[info.Ref.Name()] = info
		default:
			break drain
		}
	}
	res := make([]l1.NodeInfo, 0, len(c.nodes))
	for _, info := range c.nodes {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ref.Name() < res[j].Ref.Name() })
	return res
}
