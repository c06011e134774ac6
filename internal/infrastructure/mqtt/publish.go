package mqtt

import "fmt"

// Publish sends payload to topic and waits for the broker acknowledgement
// (for QoS 0, until the packet is written).
//
// Retain state topics, never events.
//
//	err := client.Publish(client.Topics().State(), snapshot, 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validate(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.raw.Publish(topic, qos, retained, payload), ErrPublishFailed)
}
