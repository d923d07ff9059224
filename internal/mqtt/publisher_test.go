package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

func testConfig() config.Config {
	return config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTClientID: "test",
		MQTTTopic:    "home/climate/readings",
	}
}

func TestEncodeReading(t *testing.T) {
	r := types.Reading{
		Timestamp:    time.Date(2024, 3, 5, 10, 0, 1, 0, time.Local),
		TemperatureF: 68,
		HumidityPct:  45.5,
	}
	data, err := encodeReading(r)
	if err != nil {
		t.Fatalf("encodeReading: %v", err)
	}

	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Message{Timestamp: "2024-03-05 10:00:01", TemperatureF: 68, HumidityPct: 45.5}
	if got != want {
		t.Errorf("message = %+v; want %+v", got, want)
	}
}

func TestPublishReading_notConnected(t *testing.T) {
	p := NewPublisher(testConfig(), nil)
	err := p.PublishReading(types.Reading{Timestamp: time.Now()})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishReading = %v; want ErrNotConnected", err)
	}
}

func TestConnect_respectsContext(t *testing.T) {
	p := NewPublisher(testConfig(), nil)
	t.Cleanup(p.Disconnect)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Connect(ctx)
	if err == nil {
		t.Fatal("Connect = nil; want error with no broker")
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("Connect took %s; want it bounded by ctx", time.Since(start))
	}
	if p.IsConnected() {
		t.Error("IsConnected = true; want false")
	}
}

func TestConnect_afterDisconnect(t *testing.T) {
	p := NewPublisher(testConfig(), nil)
	p.Disconnect()
	p.Disconnect()

	if err := p.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Connect after Disconnect = %v; want ErrStopped", err)
	}
}
