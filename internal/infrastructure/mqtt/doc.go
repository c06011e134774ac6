// Package mqtt connects a node to the site broker.
//
// Every node owns a subtree keyed by its node ID:
//
//	graylogic/node/{id}/state    retained JSON snapshot
//	graylogic/node/{id}/event    command events
//	graylogic/node/{id}/command  inbound commands ("led/on", ...)
//	graylogic/node/{id}/status   online/offline, retained, also the will
//
// Credentials belong in GRAYLOGIC_NODE_MQTT_USERNAME/PASSWORD. Enable TLS
// when the broker is off-site.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.Topics{NodeID: id})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().Command(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
