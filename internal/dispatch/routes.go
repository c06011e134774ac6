package dispatch

import (
	"net/http"

	"github.com/nerrad567/gray-logic-node/internal/device"
)

// Response messages.
const (
	MsgLEDOn          = "LED已打开"
	MsgLEDOff         = "LED已关闭"
	MsgRelayOn        = "继电器已打开"
	MsgRelayOff       = "继电器已关闭"
	msgNotFoundPrefix = "路径未找到: "
)

// Paths served by the default table.
const (
	PathPanel      = "/"
	PathDeviceInfo = "/api/device/info"
	PathLEDOn      = "/api/led/on"
	PathLEDOff     = "/api/led/off"
	PathLEDToggle  = "/api/led/toggle"
	PathRelayOn    = "/api/relay/on"
	PathRelayOff   = "/api/relay/off"
	PathSensorData = "/api/sensor/data"
)

// Env is what handlers operate on.
type Env struct {
	State *device.State
	Scale device.Scale
	Info  device.InfoProvider
	Panel []byte
}

// HandlerFunc serves one route.
type HandlerFunc func(env *Env) Result

// Route binds a method and exact path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// DefaultRoutes returns the node's fixed route table.
func DefaultRoutes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: PathPanel, Handler: handlePanel},
		{Method: http.MethodGet, Path: PathDeviceInfo, Handler: handleDeviceInfo},
		{Method: http.MethodGet, Path: PathLEDOn, Handler: handleLEDOn},
		{Method: http.MethodGet, Path: PathLEDOff, Handler: handleLEDOff},
		{Method: http.MethodGet, Path: PathLEDToggle, Handler: handleLEDToggle},
		{Method: http.MethodGet, Path: PathRelayOn, Handler: handleRelayOn},
		{Method: http.MethodGet, Path: PathRelayOff, Handler: handleRelayOff},
		{Method: http.MethodGet, Path: PathSensorData, Handler: handleSensorData},
	}
}

func handlePanel(env *Env) Result {
	return Document(http.StatusOK, ContentTypeHTML, env.Panel)
}

func handleDeviceInfo(env *Env) Result {
	var info device.Info
	if env.Info != nil {
		info = env.Info.DeviceInfo()
	}

	body := NewResponse().
		Set("device", info.Name).
		Set("device_id", info.ID).
		Set("ip", info.IP).
		Set("mac", info.MAC)
	if info.HasRSSI {
		body.Set("rssi", info.RSSI)
	}
	body.Set("free_heap", info.FreeMemory).
		Set("chip_id", info.ChipID)

	return JSON(http.StatusOK, body)
}

func handleLEDOn(env *Env) Result {
	env.State.SetLED(true)
	return actionResult(env, "led/on", MsgLEDOn)
}

func handleLEDOff(env *Env) Result {
	env.State.SetLED(false)
	return actionResult(env, "led/off", MsgLEDOff)
}

func handleLEDToggle(env *Env) Result {
	on := !env.State.LEDOn()
	env.State.SetLED(on)
	msg := MsgLEDOff
	if on {
		msg = MsgLEDOn
	}
	return actionResult(env, "led/toggle", msg)
}

func handleRelayOn(env *Env) Result {
	env.State.SetRelay(true)
	return actionResult(env, "relay/on", MsgRelayOn)
}

func handleRelayOff(env *Env) Result {
	env.State.SetRelay(false)
	return actionResult(env, "relay/off", MsgRelayOff)
}

func handleSensorData(env *Env) Result {
	v := env.State.AnalogValue()
	body := NewResponse().
		Set("analog_value", v).
		Set("voltage", env.Scale.Voltage(v)).
		Set("button_pressed", env.State.ButtonPressed()).
		Set("led_state", env.State.LEDOn()).
		Set("relay_state", env.State.RelayOn())
	return JSON(http.StatusOK, body)
}

// actionResult reports an output command together with both output levels
// as they stand after the command.
func actionResult(env *Env, action, message string) Result {
	body := NewResponse().
		Set("success", true).
		Set("message", message).
		Set("led_state", env.State.LEDOn()).
		Set("relay_state", env.State.RelayOn())
	res := JSON(http.StatusOK, body)
	res.Action = action
	return res
}

// NotFound is the result for any unmatched method or path.
func NotFound(path string) Result {
	body := NewResponse().
		Set("error", true).
		Set("message", msgNotFoundPrefix+path)
	return JSON(http.StatusNotFound, body)
}
