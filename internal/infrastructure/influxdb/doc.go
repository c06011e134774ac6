// Package influxdb records a node's I/O history in InfluxDB v2.
//
// Each reading becomes one node_io point:
//
//	node_io,kind=sample,node=<id> analog_value=2048i,voltage=1.65,button_pressed=false,led_on=true,relay_on=false
//
// Commands carry an extra source tag (http or mqtt).
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) { log.Error("influx write", "error", err) })
//	client.WriteNodeIO(nodeID, "sample", "", influxdb.IOSample{AnalogValue: 2048, Voltage: 1.65})
//
// Writes are batched and never block; batch failures arrive through the
// SetOnError callback.
package influxdb
