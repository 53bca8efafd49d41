/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// hexd hosts HexiDirect worlds behind sessions, with HTTP, WebSocket,
// and MQTT surfaces, bolt persistence, scheduled stepping, and step
// webhooks.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
)

func main() {
	var (
		configFile = flag.String("config", "", "optional YAML config file")
		httpAddr   = flag.String("http", ":8383", "HTTP service address")
		dbFile     = flag.String("db", "hexi.db", "bolt database file ('' to disable)")
		templates  = flag.String("templates", "", "world template directory")
		seed       = flag.Int64("seed", 0, "default RNG seed for new worlds")
		webhookURL = flag.String("webhook", "", "URL to POST step results to")
		mqttBroker = flag.String("mqtt", "", "MQTT broker (e.g. tcp://localhost:1883)")
		tracing    = flag.Bool("v", false, "trace service operations")
	)
	flag.Parse()

	conf, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if conf.HTTPAddr != "" && *httpAddr == ":8383" {
		*httpAddr = conf.HTTPAddr
	}
	if conf.DBFile != "" && *dbFile == "hexi.db" {
		*dbFile = conf.DBFile
	}
	if conf.Templates != "" && *templates == "" {
		*templates = conf.Templates
	}
	if conf.Seed != 0 && *seed == 0 {
		*seed = conf.Seed
	}
	if conf.Webhook != "" && *webhookURL == "" {
		*webhookURL = conf.Webhook
	}
	if conf.MQTT.Broker != "" && *mqttBroker == "" {
		*mqttBroker = conf.MQTT.Broker
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewService(ctx, *dbFile, *templates)
	if err != nil {
		log.Fatal(err)
	}
	s.Tracing = *tracing || conf.Tracing
	s.DefaultSeed = *seed

	if *webhookURL != "" {
		if s.webhook, err = NewWebhook(*webhookURL); err != nil {
			log.Fatal(err)
		}
	}

	mux := http.NewServeMux()
	if err = s.WebSocketService(ctx, mux); err != nil {
		log.Fatal(err)
	}
	if err = s.HTTPService(ctx, mux); err != nil {
		log.Fatal(err)
	}

	if *mqttBroker != "" {
		opts := MQTTOptions{
			Broker:   *mqttBroker,
			ClientId: conf.MQTT.ClientId,
			CmdTopic: conf.MQTT.CmdTopic,
			OutTopic: conf.MQTT.OutTopic,
		}
		if err = s.MQTTService(ctx, opts); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("hexd listening on %s", *httpAddr)
	log.Fatal(http.ListenAndServe(*httpAddr, mux))
}
