package node

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/device"
	"github.com/nerrad567/gray-logic-node/internal/dispatch"
	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

type harness struct {
	sim   *hal.Sim
	state *device.State
	loop  *Loop
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	sim := hal.NewSim(4095)
	state := device.NewState(sim, 4095)
	scale := device.Scale{MaxValue: 4095, ReferenceVolts: 3.3}
	d := dispatch.New(&dispatch.Env{
		State: state,
		Scale: scale,
		Info:  device.StaticInfo{Name: "test-node", IP: "127.0.0.1", FreeMemory: 1024},
		Panel: []byte("<html></html>"),
	})
	loop := New(d, device.NewSampler(sim, state), state, scale, opts, logging.Discard())
	return &harness{sim: sim, state: state, loop: loop}
}

// submitStepped submits from a goroutine and turns the loop by hand until
// the reply arrives.
func (h *harness) submitStepped(t *testing.T, method, path string) Reply {
	t.Helper()
	type result struct {
		rep Reply
		err error
	}
	ch := make(chan result, 1)
	go func() {
		rep, err := h.loop.Submit(context.Background(), method, path, "test")
		ch <- result{rep, err}
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case r := <-ch:
			if r.err != nil {
				t.Fatalf("Submit(%s %s) error = %v", method, path, r.err)
			}
			return r.rep
		case <-deadline:
			t.Fatalf("Submit(%s %s) timed out", method, path)
		default:
			h.loop.Step()
			time.Sleep(time.Millisecond)
		}
	}
}

func decodeReply(t *testing.T, rep Reply) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rep.Body, &m); err != nil {
		t.Fatalf("reply body %q: %v", rep.Body, err)
	}
	return m
}

func TestLoop_StepServesRequest(t *testing.T) {
	h := newHarness(t, Options{})

	rep := h.submitStepped(t, http.MethodGet, dispatch.PathLEDOn)
	if rep.Status != http.StatusOK {
		t.Fatalf("status = %d", rep.Status)
	}
	if rep.ContentType != dispatch.ContentTypeJSON {
		t.Errorf("content type = %q", rep.ContentType)
	}
	if m := decodeReply(t, rep); m["led_state"] != true {
		t.Errorf("led_state = %v", m["led_state"])
	}
	if !h.sim.LED() {
		t.Error("LED pin not driven")
	}
}

func TestLoop_StepWithoutRequestSamples(t *testing.T) {
	h := newHarness(t, Options{})
	h.sim.SetAnalog(1000)
	h.sim.SetButton(true)

	h.loop.Step()

	if h.state.AnalogValue() != 1000 || !h.state.ButtonPressed() {
		t.Errorf("state not sampled: analog %d button %v", h.state.AnalogValue(), h.state.ButtonPressed())
	}
}

func TestLoop_CommandEmitsEvent(t *testing.T) {
	h := newHarness(t, Options{})

	h.submitStepped(t, http.MethodGet, dispatch.PathRelayOn)

	select {
	case ev := <-h.loop.Events():
		if ev.Kind != EventCommand || ev.Action != "relay/on" || ev.Source != "test" {
			t.Errorf("event = %+v", ev)
		}
		if !ev.Snapshot.RelayOn {
			t.Error("snapshot should show relay on")
		}
	default:
		t.Fatal("no command event emitted")
	}
}

func TestLoop_ReadOnlyRequestEmitsNoCommand(t *testing.T) {
	h := newHarness(t, Options{})

	h.submitStepped(t, http.MethodGet, dispatch.PathSensorData)
	h.submitStepped(t, http.MethodGet, "/missing")

	select {
	case ev := <-h.loop.Events():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestLoop_SampleEventsThrottled(t *testing.T) {
	h := newHarness(t, Options{PublishInterval: time.Hour})

	h.sim.SetAnalog(100)
	h.loop.Step()
	h.sim.SetAnalog(200)
	h.loop.Step()
	h.sim.SetAnalog(300)
	h.loop.Step()

	count := 0
	for {
		select {
		case ev := <-h.loop.Events():
			if ev.Kind != EventSample {
				t.Errorf("event kind = %s", ev.Kind)
			}
			if ev.Snapshot.AnalogValue != 100 {
				t.Errorf("first sample analog = %d, want 100", ev.Snapshot.AnalogValue)
			}
			count++
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Errorf("sample events = %d, want 1 within one publish interval", count)
	}
}

func TestLoop_UnchangedInputsEmitNothing(t *testing.T) {
	h := newHarness(t, Options{})

	for i := 0; i < 5; i++ {
		h.loop.Step()
	}

	select {
	case ev := <-h.loop.Events():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestLoop_FullChannelDrops(t *testing.T) {
	h := newHarness(t, Options{EventBuffer: 1})

	h.submitStepped(t, http.MethodGet, dispatch.PathLEDOn)
	h.submitStepped(t, http.MethodGet, dispatch.PathLEDOff)

	if got := h.loop.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}

func TestLoop_SubmitAfterStop(t *testing.T) {
	h := newHarness(t, Options{SampleInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.loop.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	_, err := h.loop.Submit(context.Background(), http.MethodGet, dispatch.PathLEDOn, "test")
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Submit() error = %v, want ErrStopped", err)
	}
}

func TestLoop_SubmitContextCancelled(t *testing.T) {
	h := newHarness(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Nobody steps the loop, so the request is never accepted.
	_, err := h.loop.Submit(ctx, http.MethodGet, dispatch.PathLEDOn, "test")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want DeadlineExceeded", err)
	}
	if h.state.LEDOn() {
		t.Error("abandoned request must not change state")
	}
}

func TestLoop_EndToEnd(t *testing.T) {
	h := newHarness(t, Options{SampleInterval: time.Millisecond, PublishInterval: time.Millisecond})
	h.sim.SetAnalog(2048)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.loop.Run(ctx)

	submit := func(path string) map[string]any {
		t.Helper()
		rep, err := h.loop.Submit(ctx, http.MethodGet, path, "http")
		if err != nil {
			t.Fatalf("Submit(%s) error = %v", path, err)
		}
		return decodeReply(t, rep)
	}

	info := submit(dispatch.PathDeviceInfo)
	if info["ip"] != "127.0.0.1" {
		t.Errorf("info ip = %v", info["ip"])
	}

	toggled := submit(dispatch.PathLEDToggle)
	if toggled["led_state"] != true {
		t.Errorf("toggle led_state = %v", toggled["led_state"])
	}

	sensor := submit(dispatch.PathSensorData)
	if sensor["led_state"] != true {
		t.Errorf("sensor led_state = %v", sensor["led_state"])
	}
	if sensor["analog_value"] != float64(2048) {
		t.Errorf("sensor analog_value = %v", sensor["analog_value"])
	}
	if v := sensor["voltage"].(float64); v < 1.65 || v > 1.651 {
		t.Errorf("sensor voltage = %v, want about 1.650", v)
	}
}
