// Package l1 defines the host side view of sensor nodes: how they are
// identified and how their readings are published.
package l1

import (
	"context"
	"time"

	"github.com/robotalks/ftlink/pkg/ft"
)

// DefaultNodeType is the type of force-torque sensor nodes.
const DefaultNodeType = "ft"

// NodeRef is a reference to a sensor node.
type NodeRef struct {
	// Type is node type.
	Type string `json:"type"`
	// ID is unique ID of the node.
	ID string `json:"id"`
}

// Name retrieves the name from ref.
func (r NodeRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates NodeRef is valid.
func (r NodeRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// NodeMeta provides metadata for a node.
type NodeMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Port        string            `json:"port,omitempty"`
	FullScales  *ft.FullScales    `json:"full_scales,omitempty"`
}

// NodeInfo provides information of a node.
type NodeInfo struct {
	Ref  NodeRef  `json:"ref"`
	Meta NodeMeta `json:"meta"`
}

// Reading is a sample converted with the full scales of the sensor.
type Reading struct {
	Time   time.Time
	Sample ft.Sample
	Wrench ft.Wrench
}

// Publisher publishes readings and states of a node.
type Publisher interface {
	PublishReading(context.Context, *Reading) error
	PublishState(context.Context, ft.State, bool) error
}
