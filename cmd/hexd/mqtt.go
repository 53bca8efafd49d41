/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configures the MQTT coupling.
type MQTTOptions struct {
	// Broker is like "tcp://localhost:1883".
	Broker   string
	ClientId string

	// CmdTopic carries inbound SOps.
	CmdTopic string

	// OutTopic carries op results.  The ops firehose is not
	// published here.
	OutTopic string

	QoS byte
}

// MQTTService couples the service to an MQTT broker: SOps arrive on
// CmdTopic, results go out on OutTopic.
func (s *Service) MQTTService(ctx context.Context, opts MQTTOptions) error {
	if opts.ClientId == "" {
		opts.ClientId = "hexd"
	}
	if opts.CmdTopic == "" {
		opts.CmdTopic = "hexi/cmd"
	}
	if opts.OutTopic == "" {
		opts.OutTopic = "hexi/out"
	}

	copts := mqtt.NewClientOptions()
	copts.AddBroker(opts.Broker)
	copts.SetClientID(opts.ClientId)
	copts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(copts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	emit := func(x interface{}) {
		js, err := json.Marshal(&x)
		if err != nil {
			log.Printf("MQTTService Marshal error %v on %#v", err, x)
			return
		}
		if t := client.Publish(opts.OutTopic, opts.QoS, false, js); t.Wait() && t.Error() != nil {
			log.Printf("MQTTService Publish error %v", t.Error())
		}
	}

	handler := func(c mqtt.Client, m mqtt.Message) {
		var op SOp
		if err := json.Unmarshal(m.Payload(), &op); err != nil {
			emit(map[string]interface{}{
				"err": fmt.Sprintf("can't parse: %v", err),
			})
			return
		}
		if err := op.Do(ctx, s); err != nil {
			log.Println("MQTTService op.Do error", err)
			// Conveyed via op.Err.
		}
		emit(&op)
	}

	if t := client.Subscribe(opts.CmdTopic, opts.QoS, handler); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	log.Printf("MQTTService subscribed to %s on %s", opts.CmdTopic, opts.Broker)

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
	}()

	return nil
}
