package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/telework/internal/testutil"
)

func TestPublishToMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	tok := sub.Connect()
	tok.Wait()
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("it/telework/commute", 1, func(_ paho.Client, m paho.Message) {
		received <- m.Payload()
	})
	tok.Wait()
	require.NoError(t, tok.Error())

	pub, err := NewPahoPublisher(Config{Broker: broker, ClientID: "pub", TopicPrefix: "it/telework", QoS: 1})
	require.NoError(t, err)
	defer pub.Disconnect()
	require.NoError(t, pub.PublishJSON("commute", map[string]int{"routed": 2}))

	select {
	case payload := <-received:
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		require.Equal(t, "commute", env.Type)
	case <-ctx.Done():
		t.Fatal("message not received")
	}
}
