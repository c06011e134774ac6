package mqtt

import "fmt"

// TopicPrefixNode is the base for all node topics.
// Scheme: graylogic/node/{node_id}/{kind}
const TopicPrefixNode = "graylogic/node"

// Topics builds the MQTT topics of one node.
//
//	topics := mqtt.Topics{NodeID: "3f2c..."}
//	topics.State() // "graylogic/node/3f2c.../state"
type Topics struct {
	NodeID string
}

// State returns the retained state snapshot topic.
//
// Example: graylogic/node/bench-1/state
func (t Topics) State() string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixNode, t.NodeID)
}

// Event returns the topic for command events.
//
// Example: graylogic/node/bench-1/event
func (t Topics) Event() string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixNode, t.NodeID)
}

// Command returns the topic the node accepts commands on.
//
// Example: graylogic/node/bench-1/command
func (t Topics) Command() string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixNode, t.NodeID)
}

// Status returns the online/offline status topic (also the LWT topic).
//
// Example: graylogic/node/bench-1/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixNode, t.NodeID)
}

// AllNodeStates returns a pattern matching every node's state topic.
//
// Pattern: graylogic/node/+/state
func (Topics) AllNodeStates() string {
	return TopicPrefixNode + "/+/state"
}

// AllNodes returns a pattern matching all node traffic.
//
// Pattern: graylogic/node/#
func (Topics) AllNodes() string {
	return TopicPrefixNode + "/#"
}
