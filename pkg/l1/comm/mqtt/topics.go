package mqtt

import (
	"strings"

	"github.com/robotalks/ftlink/pkg/l1"
)

// Topic kinds, the last level of a node topic.
const (
	TopicMeta   = "meta"
	TopicState  = "state"
	TopicWrench = "wrench"
)

// NodeTopic builds the topic TYPE/ID/KIND.
func NodeTopic(ref l1.NodeRef, kind string) string {
	return ref.Name() + "/" + kind
}

// AllNodesTopic is the pattern matching kind of all nodes.
func AllNodesTopic(kind string) string {
	return "+/+/" + kind
}

// ParseNodeTopic splits a topic built by NodeTopic.
func ParseNodeTopic(topic string) (ref l1.NodeRef, kind string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return
	}
	ref.Type, ref.ID, kind = items[0], items[1], items[2]
	ok = ref.IsValid() && kind != ""
	return
}
